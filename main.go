package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lumipallolabs/dirwatch/internal/config"
	"github.com/lumipallolabs/dirwatch/internal/core"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/sink"
	"github.com/lumipallolabs/dirwatch/internal/stats"
	"github.com/lumipallolabs/dirwatch/internal/ui/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

// errStopped ends the run group when one part finishes on its own
var errStopped = errors.New("stopped")

const feedSize = 256

func main() {
	var cfg config.Config
	kong.Parse(&cfg, append(config.Options(), kong.Vars{"version": version})...)
	os.Exit(run(&cfg))
}

func run(cfg *config.Config) int {
	if cfg.Debug && !logging.Enabled {
		logging.Setup(true)
	}

	targets, err := cfg.Targets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	counters := stats.New(reg)

	var out sink.Sink
	var feed *tui.Feed
	switch {
	case cfg.TUI:
		feed = tui.NewFeed(feedSize)
		out = feed
	case cfg.LogFile != "":
		f, err := sink.OpenFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		defer f.Close()
		out = f
	default:
		out = sink.NewStream(os.Stdout, sink.NewStyler(os.Stdout, cfg.ColorMode()))
	}

	g, gctx := errgroup.WithContext(ctx)

	var watchErr error
	g.Go(func() error {
		watchErr = core.NewSupervisor(targets, out, counters).Run(gctx)
		if feed != nil {
			// Keep the view open so the failures can be read
			feed.Close()
			return nil
		}
		return errStopped
	})

	if cfg.MetricsListen != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsListen, reg)
		})
	}

	if feed != nil {
		roots := make([]string, len(targets))
		for i, t := range targets {
			roots[i] = t.Root
		}
		g.Go(func() error {
			app := tui.NewApp(version, roots, feed, counters)
			if err := tui.Run(gctx, app, tea.WithAltScreen()); err != nil {
				return err
			}
			return errStopped
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errStopped) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if watchErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", watchErr)
		return 1
	}
	return 0
}

// serveMetrics exposes the Prometheus registry until ctx is done
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ping", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logging.Debug.Printf("serving metrics on %s", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
