// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	arena "github.com/wundergraph/go-pool-arena"
)

var statsCapacity int

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsCapacity, "capacity", 1<<20, "Arena capacity in bytes")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <size>...",
		Short: "Allocate sizes in order and show arena statistics",
		Long: `The stats command allocates each size first-fit from a fresh arena and
prints the resulting accounting. Sizes that do not fit are reported and skipped.

Example:
  arenactl stats --capacity 4096 100 200 4000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if statsCapacity <= 0 {
				return errors.Newf("capacity must be positive, got %d", statsCapacity)
			}
			a := arena.NewFixedArena(statsCapacity, sessionConfig().options()...)
			defer a.Release()

			p := message.NewPrinter(language.English)
			for _, arg := range args {
				size, err := strconv.Atoi(arg)
				if err != nil || size <= 0 {
					return errors.Newf("invalid size %q", arg)
				}
				if _, err := a.Allocate(size); err != nil {
					p.Fprintf(cmd.OutOrStdout(), "skip %d: %v\n", size, err)
				}
			}
			return writeStats(cmd.OutOrStdout(), a.Stats())
		},
	}
}

// writeStats prints s with locale-aware digit grouping.
func writeStats(w io.Writer, s arena.Stats) error {
	p := message.NewPrinter(language.English)
	rows := []struct {
		label string
		value int
	}{
		{"capacity", s.Capacity},
		{"in use", s.InUse},
		{"free", s.Free},
		{"peak", s.Peak},
		{"active", s.Active},
		{"free blocks", s.FreeBlocks},
		{"largest free", s.LargestFree},
	}
	for _, r := range rows {
		if _, err := p.Fprintf(w, "%-14s %d\n", r.label+":", r.value); err != nil {
			return err
		}
	}
	_, err := p.Fprintf(w, "%-14s %.2f\n", "fragmentation:", s.Fragmentation)
	return err
}
