package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/hgdesk/internal/hgweb"
)

var RepoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage Mercurial repositories",
	Long:  `Create, remove and list the repositories served under /hg, without going through HTTP.`,
}

var repoInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoInit,
}

var repoRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a repository and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoRm,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories",
	Args:  cobra.NoArgs,
	RunE:  runRepoList,
}

func init() {
	RepoCmd.AddCommand(repoInitCmd, repoRmCmd, repoListCmd)
}

func openAdapter(cmd *cobra.Command) (*hgweb.Adapter, func(), error) {
	cfg, logger, cleanup, err := load(cmd)
	if err != nil {
		return nil, nil, err
	}
	a, err := hgweb.NewAdapter(cfg.RepoDir(), "/hg", newRunner(cfg), nil, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func runRepoInit(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openAdapter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	outcome, err := a.InitRepo(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], outcome)
	return nil
}

func runRepoRm(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openAdapter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	outcome, err := a.RemoveRepo(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], outcome)
	return nil
}

func runRepoList(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := openAdapter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, name := range a.Repos() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
