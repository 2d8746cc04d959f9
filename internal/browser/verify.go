// Package browser loads a built page in headless Chrome and reports the
// JavaScript exceptions it throws.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-webembed/internal/process"
)

// Sentinel errors for page verification.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrVerifyFailed   = errors.New("page threw uncaught exceptions")
)

// Verification defaults.
const (
	DefaultTimeout = 30 * time.Second
	DefaultSettle  = 500 * time.Millisecond
)

// Report lists what the page emitted while loading.
type Report struct {
	URL           string
	Exceptions    []string // uncaught exceptions, "url:line:col: message"
	ConsoleErrors []string // console.error calls
}

// Verifier opens pages in a fresh headless browser per call.
type Verifier struct {
	Timeout time.Duration // page load timeout
	Settle  time.Duration // time left for scripts to run after load
	Log     zerolog.Logger
}

// NewVerifier creates a Verifier with default timings.
func NewVerifier(log zerolog.Logger) *Verifier {
	return &Verifier{Timeout: DefaultTimeout, Settle: DefaultSettle, Log: log}
}

// Verify loads the HTML file at path and fails with ErrVerifyFailed when
// any uncaught exception is thrown. The report is returned in both cases.
func (v *Verifier) Verify(ctx context.Context, path string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	browser, cleanup, err := launch(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := &Report{URL: "file://" + filepath.ToSlash(abs)}
	if err := v.load(ctx, browser, report); err != nil {
		return report, err
	}

	for _, e := range report.Exceptions {
		v.Log.Error().Str("url", report.URL).Msg(e)
	}
	for _, c := range report.ConsoleErrors {
		v.Log.Warn().Str("url", report.URL).Msg("console.error: " + c)
	}

	if len(report.Exceptions) > 0 {
		return report, fmt.Errorf("%w: %d exception(s), first: %s", ErrVerifyFailed, len(report.Exceptions), report.Exceptions[0])
	}
	return report, nil
}

// load navigates to the report URL while collecting runtime events.
func (v *Verifier) load(ctx context.Context, browser *rod.Browser, report *Report) error {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	if err := (proto.RuntimeEnable{}).Call(page); err != nil {
		return fmt.Errorf("%w: enabling runtime: %v", ErrPageLoad, err)
	}

	var mu sync.Mutex
	eventCtx, stop := context.WithCancel(ctx)
	wait := page.Context(eventCtx).EachEvent(
		func(e *proto.RuntimeExceptionThrown) {
			mu.Lock()
			report.Exceptions = append(report.Exceptions, FormatException(e.ExceptionDetails))
			mu.Unlock()
		},
		func(e *proto.RuntimeConsoleAPICalled) {
			if e.Type != proto.RuntimeConsoleAPICalledTypeError {
				return
			}
			mu.Lock()
			report.ConsoleErrors = append(report.ConsoleErrors, formatConsoleArgs(e.Args))
			mu.Unlock()
		},
	)
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	defer func() {
		stop()
		<-done
	}()

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}

	loading := page.Context(ctx).Timeout(timeout)
	if err := loading.Navigate(report.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := loading.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	timer := time.NewTimer(v.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	stop()
	<-done
	return nil
}

// launch starts a headless browser and returns a cleanup that closes it
// and kills its process group.
func launch(ctx context.Context) (*rod.Browser, func(), error) {
	l := launcher.New().Context(ctx)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	kill := func() {
		if pid := l.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		l.Kill()
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return browser, func() {
		_ = browser.Close()
		kill()
	}, nil
}

// FormatException renders an exception as "url:line:col: message".
// CDP line and column numbers are zero-based; the output is one-based.
func FormatException(d *proto.RuntimeExceptionDetails) string {
	if d == nil {
		return "unknown exception"
	}

	msg := d.Text
	if d.Exception != nil && d.Exception.Description != "" {
		msg = firstLine(d.Exception.Description)
	}

	if d.URL == "" {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.URL, d.LineNumber+1, d.ColumnNumber+1, msg)
}

func formatConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch {
		case a == nil:
		case a.Description != "":
			parts = append(parts, firstLine(a.Description))
		default:
			parts = append(parts, a.Value.Str())
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
