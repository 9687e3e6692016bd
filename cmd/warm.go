package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/community"
)

var (
	warmOnce     bool
	warmZips     []string
	warmSchedule string
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Rebuild category pools for configured zips at the start of each month",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		zips := warmZips
		if len(zips) == 0 {
			zips = cfg.Warm.Zips
		}
		if len(zips) == 0 {
			return eris.New("warm: no zips configured (use --zips or warm.zips)")
		}

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		pf := env.Prefetcher(cfg.Providers.Primary)
		keys := env.Catalog.Keys()

		run := func() error {
			err := warmAll(ctx, pf, zips, keys)
			purgeExpired(ctx, env.Store)
			return err
		}

		if warmOnce {
			return run()
		}

		schedule := warmSchedule
		if schedule == "" {
			schedule = cfg.Warm.Schedule
		}
		c := cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cron.DefaultLogger))
		if _, err := c.AddFunc(schedule, func() {
			if err := run(); err != nil {
				zap.L().Error("warm: run failed", zap.Error(err))
			}
		}); err != nil {
			return eris.Wrapf(err, "warm: schedule %q", schedule)
		}

		c.Start()
		zap.L().Info("warm scheduler started", zap.String("schedule", schedule), zap.Int("zips", len(zips)))
		<-ctx.Done()
		<-c.Stop().Done()
		zap.L().Info("warm scheduler stopped")
		return nil
	},
}

// warmAll prefetches every category for each zip in turn. Unresolvable
// zips are skipped; the run fails only when no zip could be warmed.
func warmAll(ctx context.Context, pf community.Prefetcher, zips, categories []string) error {
	start := time.Now()
	warmed := 0
	for _, zip := range zips {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := pf.PrefetchCategories(ctx, community.Request{
			Zip:     zip,
			Options: community.Options{ForceRefresh: true},
		}, categories)
		if err != nil {
			zap.L().Warn("warm: zip failed", zap.String("zip", zip), zap.Error(err))
			continue
		}
		warmed++
	}

	zap.L().Info("warm run complete",
		zap.Int("warmed", warmed),
		zap.Int("zips", len(zips)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if warmed == 0 {
		return eris.Errorf("warm: none of %d zips could be warmed", len(zips))
	}
	return nil
}

// purgeExpired drops expired cache entries after a warm run. Failures are
// logged.
func purgeExpired(ctx context.Context, s cache.Store) {
	n, err := cache.PurgeExpired(ctx, s)
	if err != nil {
		zap.L().Warn("warm: purge expired entries failed", zap.Error(err))
		return
	}
	zap.L().Info("warm: purged expired entries", zap.Int64("removed", n))
}

func init() {
	warmCmd.Flags().BoolVar(&warmOnce, "once", false, "warm immediately and exit")
	warmCmd.Flags().StringSliceVar(&warmZips, "zips", nil, "zip codes to warm (default warm.zips)")
	warmCmd.Flags().StringVar(&warmSchedule, "schedule", "", "cron schedule in UTC (default warm.schedule)")
	rootCmd.AddCommand(warmCmd)
}
