package main

import (
	"os"
	"os/exec"

	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/spf13/cobra"
)

var gitCmd = &cobra.Command{
	Use:                "git -- [ARGS...]",
	Short:              "Run an arbitrary git subcommand against the store's working copy",
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		proc := exec.Command("git", append([]string{"-C", e.store.Root}, args...)...)
		proc.Stdin = os.Stdin
		proc.Stdout = os.Stdout
		proc.Stderr = os.Stderr
		if err := proc.Run(); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "git exited with an error").WithCause(err))
		}
	},
}
