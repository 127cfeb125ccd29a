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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/internal/logging"
	"github.com/mesh-intelligence/docshelf/internal/metrics"
	"github.com/mesh-intelligence/docshelf/internal/view"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

var (
	watchMetricsAddr string
	watchFor         time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a summary whenever the library changes",
	Long: `watch attaches to the library and prints a one-line summary every time
a change signal arrives, including changes made by other docshelf processes
sharing the same data directory. With --metrics-addr it also serves
Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if watchFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchFor)
			defer cancel()
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		m, err := metrics.New(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}

		lib, err := attachLibrary(library.WithMetrics(m))
		if err != nil {
			return err
		}
		defer lib.Detach()

		log := logging.Component(logger, "watch")
		out := cmd.OutOrStdout()
		mirror := view.NewMirror(lib, func(snap library.Snapshot, sig types.Signal) {
			printSummary(out, sig, snap)
		})
		if err := mirror.Attach(); err != nil {
			return err
		}
		defer mirror.Detach()
		printSummary(out, types.Signal{}, mirror.Snapshot())

		if watchMetricsAddr != "" {
			srv := &http.Server{
				Addr:              watchMetricsAddr,
				Handler:           metricsMux(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server failed", "addr", watchMetricsAddr, "error", err)
					stop()
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			log.Info("serving metrics", "addr", watchMetricsAddr)
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "stop after this long (default: until interrupted)")
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// printSummary writes one line describing the library after sig. A zero
// signal marks the initial read.
func printSummary(w io.Writer, sig types.Signal, snap library.Snapshot) {
	what := "initial"
	if sig.Kind != "" {
		what = string(sig.Kind)
		if sig.Collection != "" {
			what += " " + sig.Collection
		}
	}
	fmt.Fprintf(w, "%s  %s: %d documents, %d folders, %d access entries\n",
		time.Now().Format(time.TimeOnly), what,
		len(snap.Documents), len(snap.Folders), len(snap.Access))
}
