package cli

import (
	"fmt"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/spf13/cobra"
)

// expiry turns a relative --expires flag into an absolute time; zero means never.
func expiry(d time.Duration) *time.Time {
	if d <= 0 {
		return nil
	}
	t := time.Now().Add(d).UTC()
	return &t
}

func (a *App) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage encrypted notes",
	}
	cmd.AddCommand(a.noteCreateCmd(), a.noteListCmd(), a.noteGetCmd(), a.noteDeleteCmd())
	return cmd
}

func (a *App) noteCreateCmd() *cobra.Command {
	var (
		title   string
		burn    bool
		expires time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypt and store a note",
		Long:  `Reads the note body from stdin and encrypts it locally with a passphrase before upload. The server only stores ciphertext.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := getMultiline(a.reader, "Note text", a.out)
			if err != nil {
				return err
			}

			passphrase, err := getPassword("Passphrase", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(passphrase)

			sealed, err := cryptox.EncryptWithPassphrase(passphrase, []byte(body))
			if err != nil {
				return fmt.Errorf("encrypt note: %w", err)
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			n, err := a.api.CreateNote(ctx, &api.CreateNoteRequest{
				Title:               title,
				EncryptedContent:    sealed,
				AutoDeleteAfterRead: burn,
				ExpiresAt:           expiry(expires),
			})
			if err != nil {
				return err
			}
			a.success("Created note %s", n.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().BoolVar(&burn, "burn", false, "delete the note after it is read once")
	cmd.Flags().DurationVar(&expires, "expires", 0, "expire the note after this long (e.g. 24h)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *App) noteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			notes, err := a.api.ListNotes(ctx)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(a.out, "No notes.")
				return nil
			}
			for _, n := range notes {
				flags := ""
				if n.AutoDeleteAfterRead {
					flags = " [burn after read]"
				}
				labelColor.Fprintf(a.out, "%s", n.ID)
				fmt.Fprintf(a.out, "  %s  expires %s%s\n", n.Title, formatTime(n.ExpiresAt), flags)
			}
			return nil
		},
	}
}

func (a *App) noteGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch and decrypt a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			n, err := a.api.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			if n.AutoDeleteAfterRead {
				a.warn("This note is burned now; it cannot be fetched again.")
			}

			passphrase, err := getPassword("Passphrase", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(passphrase)

			body, err := cryptox.DecryptWithPassphrase(passphrase, n.EncryptedContent)
			if err != nil {
				return fmt.Errorf("wrong passphrase or corrupted note: %w", err)
			}

			a.field("Title", n.Title)
			fmt.Fprintln(a.out, string(body))
			return nil
		},
	}
}

func (a *App) noteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.api.DeleteNote(ctx, args[0]); err != nil {
				return err
			}
			a.success("Deleted note %s", args[0])
			return nil
		},
	}
}
