package ui

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// copyToClipboardFn and openURLFn are the active implementations for clipboard
// and browser operations. Tests replace them via StubPlatformActions.
var (
	copyToClipboardFn = clipboard.WriteAll
	openURLFn         = openURLImpl
)

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// OpenURL opens a URL in the default browser.
func OpenURL(url string) error { return openURLFn(url) }

// StubPlatformActions replaces clipboard and browser functions with
// recorders and returns a restore function. Copied text and opened URLs are
// appended to the given slices when they are non-nil.
func StubPlatformActions(copied, opened *[]string) (restore func()) {
	origCopy := copyToClipboardFn
	origOpen := openURLFn
	copyToClipboardFn = func(s string) error {
		if copied != nil {
			*copied = append(*copied, s)
		}
		return nil
	}
	openURLFn = func(s string) error {
		if opened != nil {
			*opened = append(*opened, s)
		}
		return nil
	}
	return func() {
		copyToClipboardFn = origCopy
		openURLFn = origOpen
	}
}

// IsImageURL reports whether v is an absolute http(s) URL the card can link
// to. Anything else renders the broken-image placeholder.
func IsImageURL(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// openURLImpl is the real browser-open implementation.
// Uses a detached context since the child process outlives the caller.
func openURLImpl(url string) error {
	ctx := context.Background()

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.CommandContext(ctx, "xdg-open", url)
		} else {
			return fmt.Errorf("xdg-open not found (install xdg-utils)")
		}
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
