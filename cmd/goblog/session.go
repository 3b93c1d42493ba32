package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/jwt"
)

func newLoginCommand(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and store the session tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(password, "Password")
			if err != nil {
				return err
			}
			if err := a.client.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			return a.printUser(a.client.User())
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(password, "Password")
			if err != nil {
				return err
			}
			if err := a.client.Register(cmd.Context(), args[0], args[1], pw); err != nil {
				return err
			}
			return a.printUser(a.client.User())
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.client.Logout(cmd.Context())
			fmt.Fprintln(a.out, "logged out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Resolve and print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			return a.printUser(u)
		},
	}
}

func newRefreshCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "tokens refreshed")
			return nil
		},
	}
}

type statusView struct {
	Profile   string `json:"profile"`
	LoggedIn  bool   `json:"logged_in"`
	Subject   string `json:"subject,omitempty"`
	ExpiresIn string `json:"expires_in,omitempty"`
	Expired   bool   `json:"expired"`
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Inspect the stored access token without calling the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := statusView{Profile: a.cfg.Profile}
			tok := a.client.AccessToken(cmd.Context())
			if tok != "" {
				view.LoggedIn = true
				insp, err := jwt.NewInspector(jwt.Config{})
				if err != nil {
					return err
				}
				if sub, err := insp.Subject(tok); err == nil {
					view.Subject = sub
				}
				if left, ok, err := insp.ExpiresIn(tok); err == nil && ok {
					view.Expired = left <= 0
					view.ExpiresIn = left.Truncate(time.Second).String()
				}
			}
			return a.emit(view, func(w io.Writer) {
				if !view.LoggedIn {
					fmt.Fprintf(w, "profile %s: not logged in\n", view.Profile)
					return
				}
				state := "valid"
				if view.Expired {
					state = "expired"
				}
				fmt.Fprintf(w, "profile %s: user %s, access token %s (%s)\n", view.Profile, view.Subject, state, view.ExpiresIn)
			})
		},
	}
}

func (a *app) printUser(u *goBlog.Identity) error {
	if u == nil {
		return goBlog.ErrNoSession
	}
	return a.emit(u, func(w io.Writer) {
		fmt.Fprintf(w, "%s <%s> (%s)\n", u.Username, u.Email, u.Role)
	})
}
