package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbonduro/hgdesk/internal/commands"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "hgdesk",
	Short: "Project manager, file drop and Mercurial browser in one service",
	Long: `hgdesk serves a small project/task manager, a file upload viewer and
hgweb for every Mercurial repository under one root, behind basic auth.

Commands:
  serve              Run the web service (default)
  repo init <name>   Create a repository
  repo rm <name>     Remove a repository
  repo list          List repositories
  config render      Write hgweb.config and print its path

Root:   $HGDESK_ROOT (default ~/.hgweb), overridable with --root
Config: environment, then <root>/_web/.env`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          commands.RunServe,
}

func init() {
	commands.RootFlag(rootCmd)
	rootCmd.Flags().String("listen", "", "listen address (default $LISTEN_ADDR or :8080)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.RepoCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
