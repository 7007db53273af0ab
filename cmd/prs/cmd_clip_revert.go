package main

import (
	"io"
	"os"
	"time"

	"github.com/prsgo/prs/pkg/prs/clipboard"
	"github.com/spf13/cobra"
)

// internalClipRevertCmd implements the detached clipboard-revert helper
// that CopyTimeout's spawnRevert re-execs the binary into: it reads the
// clipboard contents at copy time from stdin, sleeps, and clears the
// clipboard if nothing has changed it since.
var internalClipRevertCmd = &cobra.Command{
	Use:    "internal-clip-revert DURATION",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		duration, err := time.ParseDuration(args[0])
		if err != nil {
			os.Exit(1)
		}
		expected, err := io.ReadAll(os.Stdin)
		if err != nil {
			os.Exit(1)
		}
		provider, err := clipboard.DetectProvider()
		if err != nil {
			os.Exit(1)
		}
		if err := clipboard.RunInternalRevert(provider, expected, duration); err != nil {
			os.Exit(1)
		}
	},
}
