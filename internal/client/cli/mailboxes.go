package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) mailboxesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mailboxes",
		Aliases: []string{"mail"},
		Short:   "Manage disposable mailboxes",
	}
	cmd.AddCommand(a.mailboxCreateCmd(), a.mailboxListCmd(), a.mailboxMessagesCmd(), a.mailboxDeleteCmd())
	return cmd
}

func (a *App) mailboxCreateCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a mailbox that lives for 24 hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			mb, err := a.api.CreateMailbox(ctx, alias)
			if err != nil {
				return err
			}
			a.success("Created %s", mb.Address)
			a.field("ID", mb.ID)
			a.field("Expires", formatTime(&mb.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "a label to recognise the mailbox by")
	return cmd
}

func (a *App) mailboxListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active mailboxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			list, err := a.api.ListMailboxes(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No active mailboxes.")
				return nil
			}
			for _, mb := range list {
				labelColor.Fprintf(a.out, "%s", mb.ID)
				fmt.Fprintf(a.out, "  %s  %s  expires %s\n", mb.Address, mb.AliasName, formatTime(&mb.ExpiresAt))
			}
			return nil
		},
	}
}

func (a *App) mailboxMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <id>",
		Short: "Show messages received by a mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			msgs, err := a.api.MailboxMessages(ctx, args[0])
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(a.out, "No messages yet.")
				return nil
			}
			for _, m := range msgs {
				labelColor.Fprintf(a.out, "%s", m.CreatedAt.Local().Format(time.DateTime))
				fmt.Fprintf(a.out, "  %s  %s\n", m.From, m.Subject)
				if m.Intro != "" {
					fmt.Fprintf(a.out, "    %s\n", m.Intro)
				}
			}
			return nil
		},
	}
}

func (a *App) mailboxDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate a mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.api.DeactivateMailbox(ctx, args[0]); err != nil {
				return err
			}
			a.success("Deactivated mailbox %s", args[0])
			return nil
		},
	}
}
