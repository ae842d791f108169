// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script|->",
		Short: "Replay an allocation script",
		Long: `The run command replays a script against a fresh arena, one command per line:

  create <capacity>       create the arena
  alloc <name> <size>     allocate size bytes and bind the address to name
  free <name>             free the allocation bound to name
  resize <name> <size>    resize the allocation bound to name
  write <name> <text>     copy text into the allocation
  read <name>             print the allocation's bytes
  print                   print the active and available block maps
  stats                   print arena statistics
  destroy                 destroy the arena

Blank lines and lines starting with # are ignored.

Example:
  arenactl run testdata/basic.txt
  echo "create 100" | arenactl run -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open script")
				}
				defer f.Close()
				in = f
			}
			return newSession(cmd.OutOrStdout(), sessionConfig()).Run(in)
		},
	}
}
