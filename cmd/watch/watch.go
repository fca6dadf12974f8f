// Package watch runs the background reminder loop in the foreground
package watch

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

	"fjacquet/expense-manager/cmd/common"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/metrics"
	"fjacquet/expense-manager/internal/reminder"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// Options holds the watch flag values
type Options struct {
	Once        bool
	MetricsAddr string
}

var opts Options

// Cmd represents the watch command
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the balance and loans and print reminders",
	Long: `Poll the balance against the warning and urgent thresholds and check loans
for due dates, printing a reminder for each event until interrupted. The data
file is re-read before every poll, so records added meanwhile are seen.
With metrics enabled, prometheus metrics are served on --metrics-addr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, c, cmd.OutOrStdout(), opts)
	},
}

func init() {
	Cmd.Flags().BoolVar(&opts.Once, "once", false, "Run a single check and exit")
	Cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Metrics listen address (default metrics.address)")
}

func runWatch(ctx context.Context, c *container.Container, w io.Writer, opts Options) error {
	logger := c.GetLogger()

	if opts.Once {
		checker := reminder.NewService(c.GetAccount(), reminder.NewSyncDispatcher(common.NotificationPrinter(w), logger),
			logger, reminder.WithMetrics(c.GetMetrics()))
		checker.Poll()
		return nil
	}

	if m := c.GetMetrics(); m != nil {
		addr := opts.MetricsAddr
		if addr == "" {
			addr = c.GetConfig().Metrics.Address
		}
		srv := newMetricsServer(addr, m)
		go serveMetrics(srv, logger)
		defer shutdownMetrics(srv, logger)
	} else if opts.MetricsAddr != "" {
		logger.Warn("Ignoring --metrics-addr: metrics are disabled (set metrics.enabled)")
	}

	// other processes write the data file while watching
	svc := c.NewReminderService(common.NotificationPrinter(w), reminder.WithRefresh(c.GetAccount().Reload))
	fmt.Fprintf(w, "Watching %s every %s, press Ctrl+C to stop\n",
		c.GetAccount().StorePath(), c.GetConfig().ReminderInterval())
	if err := svc.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	svc.Stop()
	// drain notifications queued before the stop
	if err := c.Close(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Stopped watching")
	return nil
}

func newMetricsServer(addr string, m *metrics.Metrics) *http.Server {
	kinds := make([]string, 0, len(reminder.Kinds()))
	for _, k := range reminder.Kinds() {
		kinds = append(kinds, string(k))
	}
	m.InitNotificationKinds(kinds...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveMetrics(srv *http.Server, logger logging.Logger) {
	logger.Info("Serving metrics", logging.F("address", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("Metrics server failed")
	}
}

func shutdownMetrics(srv *http.Server, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("Metrics server did not shut down cleanly")
	}
}
