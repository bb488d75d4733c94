package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "cocoinbox",
		Short:         "Command-line client for Cocoinbox",
		Long:          `Manages a Cocoinbox account: self-destructing notes, expiring file shares and disposable mailboxes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd, flags)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.close()
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVarP(&flags.server, "server", "a", "", "gRPC address of the server")
	root.PersistentFlags().StringVar(&flags.home, "home", "", "directory holding the session token")

	root.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.logoutCmd(),
		app.meCmd(),
		app.notesCmd(),
		app.filesCmd(),
		app.mailboxesCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}
