package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/hgdesk/internal/config"
	"github.com/vbonduro/hgdesk/internal/hgweb"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect generated configuration",
}

var configRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write hgweb.config and print its path",
	Args:  cobra.NoArgs,
	RunE:  runConfigRender,
}

func init() {
	ConfigCmd.AddCommand(configRenderCmd)
}

func runConfigRender(cmd *cobra.Command, _ []string) error {
	cfg, _, cleanup, err := load(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	path, err := hgweb.Materialize(cfg.Root, configOptions(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// configOptions maps the service configuration onto the hgweb config.
func configOptions(cfg *config.Config) hgweb.ConfigOptions {
	return hgweb.ConfigOptions{
		BaseURL:         "/hg",
		Style:           cfg.HgStyle,
		RefreshInterval: cfg.HgRefreshInterval,
	}
}
