package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vbonduro/hgdesk/internal/app"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web service",
	Long: `Serve the project manager, the file viewer and the Mercurial browser
on one address. The hgweb config is rewritten on every start.`,
	Args: cobra.NoArgs,
	RunE: RunServe,
}

func init() {
	ServeCmd.Flags().String("listen", "", "listen address (default $LISTEN_ADDR or :8080)")
}

// RunServe is the serve command. It is also the root command's default.
func RunServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, cleanup, err := load(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if f := cmd.Flag("listen"); f != nil && f.Changed {
		cfg.ListenAddr = f.Value.String()
	}

	a, err := app.New(cfg, newRunner(cfg), logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
