// logdemo drives a log manager from the command line: it loads an optional
// TOML configuration, emits records at every level and reports the
// resulting files and counters on exit.
//
// Usage:
//
//	logdemo [--config app.toml] [--level debug] [--rotation minutely] [--max-files 3] [--count 100]
//
// Exit codes:
//
//	0: records written and shut down cleanly
//	1: setup or shutdown failed
//	2: invalid arguments
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lixenwraith/logmanager"
	"github.com/lixenwraith/logmanager/compat"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const source = "logdemo"

var levels = []logmanager.Level{
	logmanager.LevelTrace,
	logmanager.LevelDebug,
	logmanager.LevelInfo,
	logmanager.LevelWarn,
	logmanager.LevelError,
}

// usageError marks argument errors for exit code 2
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:  "logdemo",
		Usage: "emit records through a rotating log manager",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML file with a [log] table"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "minimum level (trace, debug, info, warn, error)"},
			&cli.StringFlag{Name: "rotation", Aliases: []string{"r"}, Usage: "rotation period (MINUTELY, HOURLY, DAILY, NEVER)"},
			&cli.IntFlag{Name: "max-files", Aliases: []string{"m"}, Usage: "files kept by retention, 0 keeps all"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "log directory (default: per-user data directory)"},
			&cli.StringSliceFlag{Name: "set", Usage: "extra key=value configuration overrides"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "records to emit", Value: 25},
			&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "pause between records", Value: 10 * time.Millisecond},
			&cli.BoolFlag{Name: "zap", Usage: "emit half of the records through a zap logger"},
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
		Action: action,
	}
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the optional file, then applies flags on top
func loadConfig(cmd *cli.Command) (*logmanager.Config, error) {
	cfg := logmanager.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := logmanager.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var overrides []string
	if cmd.IsSet("level") {
		overrides = append(overrides, "level="+cmd.String("level"))
	}
	if cmd.IsSet("rotation") {
		overrides = append(overrides, "rotation="+cmd.String("rotation"))
	}
	if cmd.IsSet("max-files") {
		overrides = append(overrides, fmt.Sprintf("max_log_files=%d", int64(cmd.Int("max-files"))))
	}
	if cmd.IsSet("dir") {
		overrides = append(overrides, "directory="+cmd.String("dir"))
	}
	overrides = append(overrides, cmd.StringSlice("set")...)

	if err := cfg.ApplyOverride(overrides...); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := logmanager.Init(cfg)
	if err != nil {
		if errors.Is(err, logmanager.ErrInvalidLogLevelFormat) || errors.Is(err, logmanager.ErrInvalidRotationFileFormat) {
			return &usageError{err: err}
		}
		return err
	}

	var zl *zap.Logger
	if cmd.Bool("zap") {
		zl = compat.NewZapLogger(m).Named(source + ".zap")
	}

	count := int64(cmd.Int("count"))
	interval := cmd.Duration("interval")

	emitted := int64(0)
emit:
	for ; emitted < count; emitted++ {
		level := levels[emitted%int64(len(levels))]
		if zl != nil && emitted%2 == 1 {
			zl.Info("record via zap", zap.Int64("seq", emitted), zap.String("level", strings.ToLower(level.String())))
		} else {
			logmanager.Log(level, source, "record", "seq", emitted)
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
				break emit
			case <-time.After(interval):
			}
		}
	}

	logmanager.Info(source, "done", "emitted", emitted)
	shutdownErr := m.Shutdown()

	s := m.Stats()
	fmt.Printf("log directory: %s\n", s.Path)
	fmt.Printf("emitted=%d written=%d dropped=%d rotations=%d deletions=%d\n",
		emitted, s.File.Written, s.Dropped(), s.Rotations, s.Deletions)
	if entries, err := os.ReadDir(s.Path); err == nil {
		for _, e := range entries {
			fmt.Printf("  %s\n", e.Name())
		}
	}

	return shutdownErr
}
