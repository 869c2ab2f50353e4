package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"devnotes/internal/notes"
)

func newCmdRegister(app *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Example: heredoc.Doc(`
			devnotes register --username alice --email alice@example.com
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Password", password)
			if err != nil {
				return err
			}
			user, err := app.Client.Register(cmd.Context(), username, email, pw)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>. Run `devnotes login` next.\n", user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCmdLogin(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Example: heredoc.Doc(`
			devnotes login --email alice@example.com
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if email == "" {
				email = app.Session.Email()
			}
			in := bufio.NewReader(cmd.InOrStdin())
			addr, err := prompt(in, cmd.OutOrStdout(), "Email", email)
			if err != nil {
				return err
			}
			pw, err := prompt(in, cmd.OutOrStdout(), "Password", password)
			if err != nil {
				return err
			}

			if err := app.Login(ctx, addr, pw); err != nil {
				if notes.IsAuthError(err) {
					return errors.New("invalid email or password")
				}
				return describe(err)
			}

			vm := app.NewViewModel()
			if err := vm.LoginSucceeded(ctx); err != nil {
				return describe(err)
			}
			snap := vm.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d notes)\n", snap.User.Username, snap.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (defaults to the last one used)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newCmdLogout(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.NewViewModel().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newCmdWhoami(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Client.CurrentUser(cmd.Context())
			if notes.IsAuthError(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Username, user.Email)
			return nil
		},
	}
}

func newCmdProfile(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your username",
		Example: heredoc.Doc(`
			devnotes profile --username "Alice L."
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Client.UpdateProfile(cmd.Context(), username)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Username changed to %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "new display name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newCmdPasswd(app *App) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Long: heredoc.Doc(`
			Change your password. Both passwords are prompted for when the flags
			are omitted. The stored session stays valid.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			cur, err := prompt(in, cmd.OutOrStdout(), "Current password", current)
			if err != nil {
				return err
			}
			pw, err := prompt(in, cmd.OutOrStdout(), "New password", next)
			if err != nil {
				return err
			}

			if err := app.Client.ChangePassword(cmd.Context(), cur, pw); err != nil {
				var ve *notes.ValidationError
				if errors.As(err, &ve) && ve.Field == "currentPassword" {
					return errors.New("current password is incorrect")
				}
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "current password (prompted when omitted)")
	cmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")
	return cmd
}

// describe turns client errors into messages fit for a terminal.
func describe(err error) error {
	switch {
	case notes.IsAuthError(err):
		return fmt.Errorf("not logged in or session expired: %w", err)
	case notes.IsTransport(err):
		return fmt.Errorf("server unreachable: %w", err)
	}
	return err
}
