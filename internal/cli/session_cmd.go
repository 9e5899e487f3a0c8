// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/taskmaster-tui/internal/storage"
)

// DefaultEventLimit is how many events `session events` prints.
const DefaultEventLimit = 20

func sessionCmd(g *globals, streams IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Inspect the session event log",
	}
	cmd.AddCommand(sessionEventsCmd(g, streams))
	return cmd
}

func sessionEventsCmd(g *globals, streams IO) *cobra.Command {
	var limit int
	var output string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent logins, warnings and logouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("-n must be positive, got %d", limit)
			}
			e, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.requestContext(cmd.Context())
			defer cancel()
			events, err := e.db.RecentEvents(ctx, limit)
			if err != nil {
				return err
			}
			if events == nil {
				events = []storage.Event{}
			}

			if format != OutputText {
				return writeStructured(streams.Out, format, events)
			}
			if len(events) == 0 {
				_, err := fmt.Fprintln(streams.Out, "No session events recorded")
				return err
			}
			w := tabwriter.NewWriter(streams.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tEVENT\tREASON\tUSER")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					ev.At.Local().Format(time.DateTime), ev.Kind, dash(ev.Reason), dash(ev.Username))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultEventLimit, "number of events to show")
	addOutputFlag(cmd, &output)
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
