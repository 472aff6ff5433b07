package ui

import (
	"context"
	"errors"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

// RunOptions extend Options with process-level settings.
type RunOptions struct {
	Options
	// Watch reloads a local source whenever its file changes.
	Watch bool
}

// Run starts the Bubble Tea TUI and blocks until the user quits.
// Width/height of 0 will auto-detect the terminal size. Extra ProgramOptions
// (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, opts RunOptions, progOpts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	log := logger.FromContext(ctx)

	if opts.Width > 0 || opts.Height > 0 {
		runW, runH := opts.Width, opts.Height
		if runW <= 0 || runH <= 0 {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if runW <= 0 {
					runW = w
				}
				if runH <= 0 {
					runH = h
				}
			}
		}
		if runW <= 0 {
			runW = defaultWidth
		}
		if runH <= 0 {
			runH = defaultHeight
		}
		opts.Width, opts.Height = runW, runH
		progOpts = append(progOpts, tea.WithWindowSize(runW, runH))
	}

	m, err := NewModel(ctx, opts.Options)
	if err != nil {
		return err
	}
	defer m.Shutdown()

	progOpts = append(progOpts, tea.WithContext(ctx))
	prog := tea.NewProgram(m, progOpts...)
	m.SetSender(prog.Send)

	if opts.Watch {
		if fs, ok := opts.Source.(*loader.FileSource); ok {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := loader.Watch(ctx, fs.Path(), loader.DefaultWatchDelay, func() {
					prog.Send(SourceChangedMsg{})
				})
				if err != nil {
					log.Error(err, "file watch stopped")
				}
			}()
		} else if opts.Source != nil {
			log.Info("--watch only applies to local sources; ignoring", logger.SourceKey, opts.Source.String())
		}
	}

	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
