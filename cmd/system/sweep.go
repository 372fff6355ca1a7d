package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/app"
	"github.com/hirelink/hirelink_backend/internal/service/booking"
	"github.com/hirelink/hirelink_backend/pkg/logs"
)

// NewSweepCommand runs a single pass of the stale invitation sweep. The HTTP
// server runs the same sweep on a timer; this command exists for cron-style
// deployments and manual operations.
func NewSweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale interview invitations once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			slog.SetDefault(logs.New(cfg))

			var swept int64
			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				app.ServiceModule,
				fx.Invoke(func(svc booking.Service) error {
					timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					defer cancel()

					swept, err = svc.ExpireStaleInvitations(ctx)
					return err
				}),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)

			startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := fxApp.Start(startCtx); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}

			stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				return fmt.Errorf("failed to stop: %w", err)
			}

			fmt.Printf("Expired %d stale invitation(s).\n", swept)
			return nil
		},
	}

	return cmd
}
