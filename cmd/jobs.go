package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-billing/config"
)

var (
	workerMode bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stale gateway-backed transactions",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"reconcile",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ReconcileInterval },
			func(s *billingServices, ctx context.Context) error {
				return s.payments.RunReconcileBatch(ctx)
			},
		)
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Run expiration-related commands",
}

var expirePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Cancel pending transactions whose payment window has lapsed",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_pending",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpirePendingInterval },
			func(s *billingServices, ctx context.Context) error {
				return s.payments.RunExpirePendingBatch(ctx)
			},
		)
	},
}

var expireSubscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Mark non-renewing subscriptions past their end date as expired",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_subscriptions",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpireSubscriptionsInterval },
			func(s *billingServices, ctx context.Context) error {
				return s.subscriptions.RunExpireSubscriptionsBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(expireCmd)
	expireCmd.AddCommand(expirePendingCmd)
	expireCmd.AddCommand(expireSubscriptionsCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *billingServices, ctx context.Context) error,
) {
	cfg, services, cleanup := mustCreateServices()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), services, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(services, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	services *billingServices,
	fn func(s *billingServices, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(services, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(services, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
