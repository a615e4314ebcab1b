package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HashtagPatil/KnowledgeHub/app"
	"github.com/HashtagPatil/KnowledgeHub/auth"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

type profileView struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
}

func (o *rootOptions) printProfile(cmd *cobra.Command, verb string, p session.Profile) error {
	return o.printer(cmd).emit(profileView(p), func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s (%s)\n", verb, p.Username, p.Email)
		return err
	})
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				log.Debug().Str("email", email).Str("api_url", a.Config.APIURL).Msg("logging in")
				p, err := a.Auth.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return opts.printProfile(cmd, "Signed in as", p)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(opts *rootOptions) *cobra.Command {
	var form auth.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				form.Confirm = form.Password
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Auth.Signup(ctx, form)
				if err != nil {
					return err
				}
				return opts.printProfile(cmd, "Welcome,", p)
			})
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "Display name (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Auth.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, ok := a.Session.Profile()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				return opts.printProfile(cmd, "Signed in as", p)
			})
		},
	}
}
