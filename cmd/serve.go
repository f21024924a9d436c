package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/foomo/gitpages/pkg/git"
	"github.com/foomo/gitpages/pkg/handler"
	"github.com/foomo/gitpages/pkg/page"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start serving the configured pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
			)

			l := svr.Logger()

			configs, err := loadPageConfigs(pagesFlag(v))
			if err != nil {
				return fmt.Errorf("failed to load page configurations: %w", err)
			}

			registry, err := page.NewRegistry(l.Named("inst.registry"), configs)
			if err != nil {
				return fmt.Errorf("failed to create page registry: %w", err)
			}

			fetcher := git.NewFetcher(l.Named("inst.fetcher"))

			scheduler := page.NewScheduler(l.Named("inst.scheduler"), registry, fetcher,
				page.SchedulerWithInterval(pollIntervalFlag(v)),
				page.SchedulerWithTempDir(tempDirFlag(v)),
			)

			isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !registry.Loaded() {
					return errors.New("pages not loaded yet")
				}
				return nil
			})
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.scheduler"), "scheduler", func(ctx context.Context, l *zap.Logger) error {
					return scheduler.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), registry, fetcher,
						handler.WithTempDir(tempDirFlag(v)),
					),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addPagesFlag(flags, v)
	addTempDirFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)

	return cmd
}
