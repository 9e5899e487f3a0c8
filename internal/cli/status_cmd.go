// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/session"
	"github.com/jeranaias/taskmaster-tui/internal/storage"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// StatusReport is what `taskmaster status` prints.
type StatusReport struct {
	Authenticated bool             `json:"authenticated" yaml:"authenticated"`
	Username      string           `json:"username,omitempty" yaml:"username,omitempty"`
	Name          string           `json:"name,omitempty" yaml:"name,omitempty"`
	SessionError  string           `json:"session_error,omitempty" yaml:"session_error,omitempty"`
	API           string           `json:"api" yaml:"api"`
	ConfigPath    string           `json:"config_path" yaml:"config_path"`
	StaySignedIn  bool             `json:"stay_signed_in" yaml:"stay_signed_in"`
	AutoLogout    AutoLogoutReport `json:"auto_logout" yaml:"auto_logout"`
	LastEvent     *storage.Event   `json:"last_event,omitempty" yaml:"last_event,omitempty"`
}

// AutoLogoutReport describes the inactivity settings.
type AutoLogoutReport struct {
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	Valid             bool   `json:"valid" yaml:"valid"`
	InactivityTimeout string `json:"inactivity_timeout" yaml:"inactivity_timeout"`
	WarningTimeout    string `json:"warning_timeout" yaml:"warning_timeout"`
}

func statusCmd(g *globals, streams IO) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"s"},
		Short:   "Show the stored session and auto-logout settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.requestContext(cmd.Context())
			defer cancel()
			report := e.status(ctx)

			if format != OutputText {
				return writeStructured(streams.Out, format, report)
			}
			return writeStatusText(streams.Out, report)
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

// status restores the stored session, which confirms it with the backend.
func (e *env) status(ctx context.Context) StatusReport {
	prefs := e.prefs.Preferences()
	a := prefs.Activity

	report := StatusReport{
		API:          e.client.BaseURL(),
		ConfigPath:   e.prefs.Path(),
		StaySignedIn: prefs.StaySignedIn,
		AutoLogout: AutoLogoutReport{
			Enabled:           a.Enabled,
			Valid:             a.Valid(),
			InactivityTimeout: session.FormatDuration(a.IdleTimeout()),
			WarningTimeout:    session.FormatDuration(a.WarningTimeout()),
		},
	}

	user, err := e.session.Restore(ctx)
	switch {
	case err == nil:
		report.Authenticated = true
		report.Username = user.Username
		report.Name = user.DisplayName()
	case errors.Is(err, auth.ErrNotAuthenticated):
	default:
		report.SessionError = err.Error()
	}

	if events, err := e.db.RecentEvents(ctx, 1); err == nil && len(events) > 0 {
		report.LastEvent = &events[0]
	}
	return report
}

func writeStatusText(w io.Writer, r StatusReport) error {
	var b strings.Builder

	switch {
	case r.Authenticated:
		b.WriteString(styles.RenderSuccess(fmt.Sprintf("Signed in as %s (%s)", r.Name, r.Username)))
	case r.SessionError != "":
		b.WriteString(styles.RenderError("Session unavailable: " + r.SessionError))
	default:
		b.WriteString(styles.RenderInfo("Not signed in"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  API:             %s\n", r.API)
	fmt.Fprintf(&b, "  Config:          %s\n", r.ConfigPath)
	fmt.Fprintf(&b, "  Stay signed in:  %s\n", yesNo(r.StaySignedIn))

	switch {
	case !r.AutoLogout.Enabled:
		b.WriteString("  Auto-logout:     off\n")
	case !r.AutoLogout.Valid:
		b.WriteString("  Auto-logout:     off (settings out of range)\n")
	default:
		fmt.Fprintf(&b, "  Auto-logout:     warning after %s idle, logout %s later\n",
			r.AutoLogout.InactivityTimeout, r.AutoLogout.WarningTimeout)
	}

	if ev := r.LastEvent; ev != nil {
		fmt.Fprintf(&b, "  Last event:      %s %s\n", describeEvent(*ev), ev.At.Local().Format(time.DateTime))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeEvent(ev storage.Event) string {
	s := string(ev.Kind)
	if ev.Reason != "" {
		s += " (" + ev.Reason + ")"
	}
	if ev.Username != "" {
		s += " " + ev.Username
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
