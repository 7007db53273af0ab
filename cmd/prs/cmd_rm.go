package main

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/spf13/cobra"
)

var rmOpts struct {
	RemoveAliases bool
}

var rmCmd = &cobra.Command{
	Use:     "rm QUERY",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a secret",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		result, err := e.store.Find(args[0])
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretRemove, "failed to search the store").WithCause(err))
		}
		if !result.Exact {
			printAmbiguousMatches(result, args[0])
			return
		}

		if err := e.sync.Prepare(); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to prepare sync").WithCause(err))
		}

		if err := e.store.Remove(result.One, rmOpts.RemoveAliases); err != nil {
			fatal(prserr.New(prserr.CodeSecretRemove, fmt.Sprintf("failed to remove %s", result.One.Name)).WithCause(err))
		}

		if err := e.sync.Finalize(fmt.Sprintf("Remove %s", args[0])); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to finalize sync").WithCause(err))
		}

		fmt.Printf("Removed %s\n", args[0])
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmOpts.RemoveAliases, "recursive", "r", false, "Also remove aliases referring to this secret")
}
