package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/queue"
)

func newAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Consume lifecycle events into the audit log",
		Long: `Consume performance lifecycle events from RabbitMQ and append them to
<dir>/lifecycle.log until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is required")
			}
			if dir == "" {
				dir = cfg.AuditLogDir
			}
			log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err = queue.StartAuditConsumer(ctx, cfg.RabbitMQURL, dir, log)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "audit log directory (default AUDIT_LOG_DIR)")
	return cmd
}
