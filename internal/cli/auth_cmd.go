// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/session"
	"github.com/jeranaias/taskmaster-tui/internal/storage"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// ErrNotRemembered is returned by login and signup when credentials would
// not outlive the command.
var ErrNotRemembered = errors.New("stay_signed_in is off, so the session would end with this command; pass --remember")

func loginCmd(g *globals, streams IO) *cobra.Command {
	var username, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for the next start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.ensureRemembered(remember); err != nil {
				return err
			}

			p := streams.prompter()
			defer p.Close()
			if username, err = ask(p, "Username: ", username, false); err != nil {
				return err
			}
			if password, err = ask(p, "Password: ", password, true); err != nil {
				return err
			}

			ctx, cancel := e.requestContext(cmd.Context())
			defer cancel()
			user, err := e.session.Login(ctx, username, password)
			if err != nil {
				return describeAuthError(err)
			}
			return e.signedIn(ctx, user)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "turn on stay_signed_in before signing in")
	return cmd
}

func signupCmd(g *globals, streams IO) *cobra.Command {
	var req auth.SignupRequest
	var remember bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.ensureRemembered(remember); err != nil {
				return err
			}

			p := streams.prompter()
			defer p.Close()
			fields := []struct {
				label  string
				value  *string
				secret bool
			}{
				{"Username: ", &req.Username, false},
				{"Password: ", &req.Password, true},
				{"Email: ", &req.Email, false},
				{"First name: ", &req.FirstName, false},
				{"Last name: ", &req.LastName, false},
			}
			for _, f := range fields {
				if *f.value, err = ask(p, f.label, *f.value, f.secret); err != nil {
					return err
				}
			}

			ctx, cancel := e.requestContext(cmd.Context())
			defer cancel()
			user, err := e.session.Signup(ctx, req)
			if err != nil {
				return describeAuthError(err)
			}
			return e.signedIn(ctx, user)
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address (prompted when empty)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name (prompted when empty)")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "turn on stay_signed_in before signing in")
	return cmd
}

func logoutCmd(g *globals, streams IO) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.requestContext(cmd.Context())
			defer cancel()

			creds, err := e.db.LoadCredentials(ctx)
			if errors.Is(err, storage.ErrNoCredentials) {
				fmt.Fprintln(streams.Out, styles.RenderInfo("Not signed in"))
				return nil
			}
			if err != nil {
				return err
			}

			if err := e.session.Logout(ctx); err != nil {
				return err
			}
			e.record(ctx, storage.Event{Kind: storage.EventLogout, Reason: session.ReasonManual, Username: creds.User.Username})
			fmt.Fprintln(streams.Out, styles.RenderSuccess("Signed out "+creds.User.Username))
			return nil
		},
	}
}

// ensureRemembered turns stay_signed_in on when asked to, and refuses to
// continue when it stays off.
func (e *env) ensureRemembered(remember bool) error {
	p := e.prefs.Preferences()
	if p.StaySignedIn {
		return nil
	}
	if !remember {
		return ErrNotRemembered
	}
	p.StaySignedIn = true
	if err := e.prefs.SetPreferences(p); err != nil {
		return fmt.Errorf("enable stay_signed_in: %w", err)
	}
	fmt.Fprintln(e.io.Out, styles.RenderInfo("stay_signed_in enabled"))
	return nil
}

func (e *env) signedIn(ctx context.Context, user auth.User) error {
	e.record(ctx, storage.Event{Kind: storage.EventLogin, Username: user.Username})
	_, err := fmt.Fprintln(e.io.Out, styles.RenderSuccess("Signed in as "+user.DisplayName()))
	return err
}

func (e *env) record(ctx context.Context, ev storage.Event) {
	if _, err := e.db.RecordEvent(ctx, ev); err != nil {
		e.logger.Warn("failed to record session event", "kind", ev.Kind, "error", err)
	}
}

func (e *env) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	timeout := time.Duration(e.prefs.Get().API.TimeoutSecs) * time.Second
	return context.WithTimeout(parent, timeout)
}

// describeAuthError prefers the backend's message.
func describeAuthError(err error) error {
	var apiErr *auth.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}
