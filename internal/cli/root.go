// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// IO holds the streams commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Prompter reads interactive answers. When nil a terminal prompter is
	// used if In is a TTY, otherwise answers are read line by line from In.
	Prompter Prompter
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
}

// Execute runs the command line against the process streams.
func Execute() error {
	return NewRootCommand(StdIO()).Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(streams IO) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "taskmaster",
		Short: "Terminal todo client with automatic logout on inactivity",
		Long: `TaskMaster is a terminal client for a todo service.

Started without a subcommand it opens the full-screen interface. Sessions
end automatically after a period without keyboard or mouse input; a warning
with a countdown appears first.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openEnv(g, streams)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runTUI(cmd.Context(), rt)
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		"config file (default ~/.taskmaster/config.toml, or $TASKMASTER_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "",
		"log format (json, pretty)")

	root.AddCommand(
		loginCmd(g, streams),
		signupCmd(g, streams),
		logoutCmd(g, streams),
		statusCmd(g, streams),
		prefsCmd(g, streams),
		sessionCmd(g, streams),
		versionCmd(streams),
	)
	return root
}

func versionCmd(streams IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(streams.Out, "taskmaster %s\n  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
				Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
