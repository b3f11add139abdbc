// Package commands holds the hgdesk subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbonduro/hgdesk/internal/config"
	"github.com/vbonduro/hgdesk/internal/hgweb"
	"github.com/vbonduro/hgdesk/internal/logging"
)

// newRunner builds the Mercurial runner; tests swap it for a fake.
var newRunner = func(cfg *config.Config) hgweb.Runner {
	return hgweb.ExecRunner{Bin: cfg.HgBin}
}

// RootFlag binds --root on cmd. When given it overrides HGDESK_ROOT for
// every subcommand.
func RootFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("root", "", "filesystem root holding _hg, _files and _web (default $HGDESK_ROOT or ~/.hgweb)")
}

// load reads the configuration and builds the logger. The returned cleanup
// func must be deferred.
func load(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	if f := cmd.Flag("root"); f != nil && f.Changed {
		if err := os.Setenv("HGDESK_ROOT", f.Value.String()); err != nil {
			return nil, nil, nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, cleanup, nil
}
