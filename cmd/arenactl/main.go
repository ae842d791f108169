// SPDX-License-Identifier: Apache-2.0

// Command arenactl drives a fixed arena from the command line: it replays
// allocation scripts and reports block maps and statistics.
package main

func main() {
	execute()
}
