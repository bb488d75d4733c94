package cli

import (
	"errors"
	"fmt"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/spf13/cobra"
)

var errPasswordMismatch = errors.New("passwords do not match")

// promptEmail uses the flag value when given.
func (a *App) promptEmail(email string) (string, error) {
	if email != "" {
		return email, nil
	}
	return getSimpleText(a.reader, "Email", a.out)
}

func (a *App) registerCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := a.promptEmail(email)
			if err != nil {
				return err
			}

			password, err := getPassword("Password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			repeat, err := getPassword("Repeat password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(repeat)

			if string(password) != string(repeat) {
				return errPasswordMismatch
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.api.Register(ctx, addr, string(password), name)
			if err != nil {
				return err
			}
			a.success("Registered %s", u.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := a.promptEmail(email)
			if err != nil {
				return err
			}

			password, err := getPassword("Password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			token, err := a.api.Login(ctx, addr, string(password))
			if err != nil {
				return err
			}
			if err := a.tokens.Save(token); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			a.success("Logged in as %s", addr)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		},
	}
}

func (a *App) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.api.Me(ctx)
			if err != nil {
				return err
			}
			a.field("ID", u.ID)
			a.field("Email", u.Email)
			if u.Name != "" {
				a.field("Name", u.Name)
			}
			return nil
		},
	}
}
