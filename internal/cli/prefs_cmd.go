// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

const prefsPrefix = "preferences."

func prefsCmd(g *globals, streams IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}
	cmd.AddCommand(prefsShowCmd(g, streams), prefsSetCmd(g, streams))
	return cmd
}

func prefsShowCmd(g *globals, streams IO) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
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

			p := e.prefs.Preferences()
			if format != OutputText {
				return writeStructured(streams.Out, format, p)
			}
			_, err = io.WriteString(streams.Out, renderMarkdown(streams.Out, preferencesMarkdown(e.prefs.Path(), p)))
			return err
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func prefsSetCmd(g *globals, streams IO) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Long: `Change one preference and save the config file. A running taskmaster
picks the change up immediately.

Keys:
  stay_signed_in                       true or false
  activity.enabled                     true or false
  activity.inactivity_timeout_minutes  ` + rangeHint(config.MinInactivityMinutes, config.MaxInactivityMinutes) + `
  activity.warning_timeout_seconds     ` + rangeHint(config.MinWarningSeconds, config.MaxWarningSeconds) + `

The "preferences." prefix is optional.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			key := args[0]
			if !strings.HasPrefix(key, prefsPrefix) {
				key = prefsPrefix + key
			}

			before := e.prefs.Preferences()
			if err := e.prefs.Set(key, args[1]); err != nil {
				return err
			}
			after := e.prefs.Preferences()

			// Turning stay_signed_in off drops anything already stored.
			if before.StaySignedIn && !after.StaySignedIn {
				ctx, cancel := e.requestContext(cmd.Context())
				defer cancel()
				if err := e.session.SetPersistence(ctx, false); err != nil {
					return fmt.Errorf("clear stored credentials: %w", err)
				}
			}

			cfg := e.prefs.Get()
			value, _ := cfg.Get(key)
			_, err = fmt.Fprintln(streams.Out, styles.RenderSuccess(fmt.Sprintf("%s = %v", strings.TrimPrefix(key, prefsPrefix), value)))
			return err
		},
	}
}

func rangeHint(lo, hi int) string {
	return fmt.Sprintf("%d-%d", lo, hi)
}

func preferencesMarkdown(path string, p config.Preferences) string {
	a := p.Activity
	var b strings.Builder
	b.WriteString("# Preferences\n\n")
	b.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Stay signed in | %s |\n", yesNo(p.StaySignedIn))
	fmt.Fprintf(&b, "| Auto-logout | %s |\n", onOff(a.Enabled))
	fmt.Fprintf(&b, "| Inactivity timeout | %d min |\n", a.InactivityTimeoutMinutes)
	fmt.Fprintf(&b, "| Warning countdown | %d s |\n", a.WarningTimeoutSeconds)
	fmt.Fprintf(&b, "\nSaved in `%s`.\n", path)
	return b.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
