// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	jsonOut bool
	check   bool
	zeroing bool
	useMmap bool
)

var rootCmd = &cobra.Command{
	Use:   "arenactl",
	Short: "Exercise a fixed-capacity arena allocator",
	Long: `arenactl creates fixed-capacity arenas and runs allocation scripts
against them, printing the allocated and free block maps as it goes.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print block maps as JSON")
	rootCmd.PersistentFlags().BoolVar(&check, "check", false, "Validate arena invariants after every step")
	rootCmd.PersistentFlags().BoolVar(&zeroing, "zero", false, "Zero memory handed out by the arena")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back arenas with an anonymous memory mapping")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// sessionConfig collects the global flags for a new session.
func sessionConfig() config {
	return config{
		JSON:    jsonOut,
		Check:   check,
		Zeroing: zeroing,
		Mmap:    useMmap,
		Logger:  slog.Default(),
	}
}
