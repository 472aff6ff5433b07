package cmd

import (
	"context"
	"os"
	"runtime"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const resizePollInterval = 250 * time.Millisecond

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	openTTYFn        = openTTY
	ttySize          = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return timeTicker{time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// ttyDevices names the console handles of an OS.
type ttyDevices struct {
	in, out string
}

func ttyDevicesFor(goos string) ttyDevices {
	if goos == "windows" {
		return ttyDevices{in: "CONIN$", out: "CONOUT$"}
	}
	return ttyDevices{in: "/dev/tty", out: "/dev/tty"}
}

// ttyPair is the opened controlling terminal. out may be the same file as
// in, or nil when only input could be opened.
type ttyPair struct {
	in, out *os.File
}

func (p ttyPair) Close() {
	if p.in != nil {
		_ = p.in.Close()
	}
	if p.out != nil && p.out != p.in {
		_ = p.out.Close()
	}
}

func openTTY() (ttyPair, error) {
	dev := ttyDevicesFor(runtime.GOOS)
	in, err := os.OpenFile(dev.in, os.O_RDWR, 0)
	if err != nil {
		return ttyPair{}, err
	}
	if dev.out == dev.in {
		return ttyPair{in: in, out: in}, nil
	}
	out, err := os.OpenFile(dev.out, os.O_RDWR, 0)
	if err != nil {
		return ttyPair{in: in}, nil
	}
	return ttyPair{in: in, out: out}, nil
}

// getProgramOptions returns extra program options for the TUI. With records
// on piped stdin, keys are read from the controlling terminal. The returned
// func releases the terminal and must always be called.
func getProgramOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	if !stdinIsPiped() {
		return nil, func() {}
	}
	tty, err := openTTYFn()
	if err != nil {
		// No terminal to read keys from: the screen still renders.
		return nil, func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	opts := []tea.ProgramOption{tea.WithInput(tty.in)}
	if tty.out != nil {
		opts = append(opts, tea.WithOutput(tty.out), watchTTYSize(ctx, tty.out))
	}
	return opts, func() {
		cancel()
		tty.Close()
	}
}

// watchTTYSize forwards size changes of out to the program. A reopened tty
// does not get SIGWINCH on every platform, so the size is polled.
func watchTTYSize(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}
		go pollTTYSize(ctx, int(out.Fd()), func(msg tea.WindowSizeMsg) { sendWindowSize(p, msg) })
	}
}

func pollTTYSize(ctx context.Context, fd int, send func(tea.WindowSizeMsg)) {
	ticker := newResizeTicker(resizePollInterval)
	defer ticker.Stop()

	var last tea.WindowSizeMsg
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
		w, h, err := ttySize(fd)
		if err != nil {
			continue
		}
		if size := (tea.WindowSizeMsg{Width: w, Height: h}); size != last {
			last = size
			send(size)
		}
	}
}
