package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/josephlewis42/smallsh/core"
	"github.com/josephlewis42/smallsh/core/config"
	"github.com/josephlewis42/smallsh/core/logger"
	"github.com/josephlewis42/smallsh/core/mode"
	"github.com/oklog/run"
	"golang.org/x/sys/unix"
)

// runShell runs the interactive shell on the process's standard streams
// until it exits or is told to hang up.
func runShell(ctx context.Context, cfg *config.Configuration) error {
	applyColor(cfg.Color)

	events, eventLog, err := openEvents(cfg)
	if err != nil {
		return err
	}
	defer eventLog.Close()

	input, err := core.NewLineReader(os.Stdin, os.Stdout, cfg.HistoryPath(), cfg.LineEditing)
	if err != nil {
		return err
	}

	modeCtl := mode.NewController(os.Stdout)
	sh := core.NewShell(core.Options{
		Config: cfg,
		Input:  input,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Mode:   modeCtl,
		Events: events,
	})
	defer sh.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	{
		// Read-eval loop.
		g.Add(func() error {
			return sh.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	{
		// Foreground-only mode toggle.
		stops := make(chan os.Signal, 1)
		signal.Notify(stops, unix.SIGTSTP)
		g.Add(func() error {
			return modeCtl.Watch(ctx, stops)
		}, func(error) {
			signal.Stop(stops)
			cancel()
		})
	}
	{
		// Interrupts are meant for the foreground job. Catching rather than
		// ignoring SIGINT lets children start with the default action.
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, unix.SIGINT)
		g.Add(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-interrupts:
				}
			}
		}, func(error) {
			signal.Stop(interrupts)
			cancel()
		})
	}
	g.Add(run.SignalHandler(ctx, unix.SIGHUP, unix.SIGTERM))

	err = g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func applyColor(setting string) {
	switch setting {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openEvents(cfg *config.Configuration) (*logger.SessionLogger, io.Closer, error) {
	if !cfg.EventLogEnabled() {
		return logger.NewDiscardLogger().NewSession(), nopCloser{}, nil
	}

	fd, err := cfg.OpenEventLog()
	if err != nil {
		return nil, nil, err
	}

	return logger.NewJsonLinesLogRecorder(fd).NewSession(), fd, nil
}
