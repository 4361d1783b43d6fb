// Command tablectl reads and writes the local configuration of a site
// through a cached table backed by the configured record store.
//
//	tablectl [flags] set <name> <value>
//	tablectl [flags] get <name>
//	tablectl [flags] delete <name>
//	tablectl [flags] list
//	tablectl [flags] invalidate
//	tablectl [flags] serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/goliatone/go-cached-table/config"
	"github.com/goliatone/go-cached-table/pkg/di"
)

func main() {
	if err := mainImpl(os.Args[1:], os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "tablectl: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tablectl", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	siteURL := fs.String("site", "https://school.moodledemo.net", "Site URL")
	username := fs.String("user", "student", "User name the site belongs to")
	addr := fs.String("addr", "localhost:9090", "Address the serve command listens on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	container, err := di.NewContainer(ctx, cfg, di.WithLogger(logger))
	if err != nil {
		return err
	}
	defer container.Close()

	s, err := container.OpenSite(ctx, *siteURL, *username)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	cmd := &command{site: s, container: container, out: stdout, addr: *addr}
	return cmd.run(ctx, fs.Args())
}

// newLogger builds a JSON handler or a tint handler that only colours
// terminal output.
func newLogger(cfg config.LogConfig, w *os.File) *slog.Logger {
	level := cfg.SlogLevel()
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(w), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))
}

