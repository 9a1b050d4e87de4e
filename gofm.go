// Command gofm is a console for a remote FM tuner: it decodes the RDS
// groups the tuner streams and shows the station data on a status screen
// or as JSON lines.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/bartgrantham/gofm/config"
	"github.com/bartgrantham/gofm/source"
	"github.com/bartgrantham/gofm/worker"
)

var getDataRequest = []byte(`{"type":"getData"}`)

func main() {
	config.Flags(pflag.CommandLine)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := config.FromFlags(pflag.CommandLine)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "couldn't open log:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gofm failed", "err", err)
		closeLog()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	var out io.Writer = os.Stderr
	var closer = func() {}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closer = func() { f.Close() }
	case cfg.Output == config.OutputTUI:
		// stderr is the screen
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "gofm",
	})
	return logger, closer, nil
}

func newSource(cfg *config.Config, logger *log.Logger) (source.Source, func(), error) {
	switch cfg.Source {
	case config.SourceStdin:
		return source.NewReader(os.Stdin, cfg.ReplayDelay, logger), func() {}, nil
	case config.SourceFile:
		f, err := os.Open(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		return source.NewReader(f, cfg.ReplayDelay, logger), func() { f.Close() }, nil
	}
	return source.NewWebSocket(cfg.URL, logger), func() {}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := worker.New(worker.Options{RBDS: cfg.RBDS, Logger: logger})
	go w.Run(ctx)

	src, closeSrc, err := newSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	srcDone := make(chan error, 1)
	go func() { srcDone <- src.Run(ctx, w) }()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(w),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
	}

	if cfg.Output == config.OutputJSON {
		return emitJSON(ctx, w, os.Stdout, cfg.Refresh, srcDone)
	}

	var banner *FIGfont
	if cfg.Font != "" {
		if banner, err = LoadFIGfont(cfg.Font); err != nil {
			return err
		}
	}
	scr, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("couldn't open screen: %w", err)
	}
	if err = scr.Init(); err != nil {
		return fmt.Errorf("couldn't init screen: %w", err)
	}
	defer scr.Fini()

	// a finished replay leaves the last state on screen
	go func() {
		if err := <-srcDone; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("source stopped", "err", err)
		}
	}()
	return newStatusScreen(scr, banner).Run(ctx, w, cfg.Refresh)
}

func metricsMux(w *worker.Worker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(w.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// emitJSON writes one data message per refresh, and a last one when the
// source runs dry.
func emitJSON(ctx context.Context, w *worker.Worker, out io.Writer, refresh time.Duration, srcDone <-chan error) error {
	var ticker = time.NewTicker(refresh)
	defer ticker.Stop()

	emit := func() error {
		msg, err := w.Handle(ctx, getDataRequest)
		if err != nil {
			return err
		}
		_, err = out.Write(append(msg, '\n'))
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-srcDone:
			if err != nil {
				return err
			}
			return emit()
		case <-ticker.C:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}
