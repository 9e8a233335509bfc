package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/cron"
	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/redis"
	"github.com/meinhoongagan/nhs-staffing/routes"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// ServeCmd runs the HTTP API together with the scheduled expiry notifier.
func ServeCmd(app *AppContext) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Cfg
			log := logger.WithModule("server")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !skipMigrate {
				if err := db.Migrate(db.DB); err != nil {
					return err
				}
			}

			if err := redis.InitRedis(ctx, cfg); err != nil {
				log.Warn("continuing without redis", zap.Error(err))
			}
			defer redis.Close()

			files, err := utils.NewFileStore(cfg)
			if err != nil {
				return err
			}
			controllers.Configure(controllers.Options{
				JWTSecret:  cfg.JWTSecret,
				AccessTTL:  cfg.JWTAccessTTL,
				RefreshTTL: cfg.JWTRefreshTTL,
				Files:      files,
				Cache:      redis.Client,
			})

			scheduler, err := cron.Start(db.DB, utils.NewMailer(cfg), cfg.ExpiryCheckSchedule, cfg.ExpiryLookaheadDays)
			if err != nil {
				return err
			}
			defer func() { <-scheduler.Stop().Done() }()

			server := routes.NewApp(cfg)
			go func() {
				<-ctx.Done()
				log.Info("shutting down")
				if err := server.Shutdown(); err != nil {
					log.Error("shutdown", zap.Error(err))
				}
			}()

			addr := fmt.Sprintf(":%d", cfg.Port)
			log.Info("server starting", zap.String("addr", addr))
			if err := server.Listen(addr); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run AutoMigrate before serving")
	return cmd
}
