package main

import (
	"fmt"
	"path/filepath"

	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/store"
	"github.com/spf13/cobra"
)

var mvCmd = &cobra.Command{
	Use:     "mv SOURCE DEST",
	Aliases: []string{"rename"},
	Short:   "Move or rename a secret",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMoveOrCopy(args[0], args[1], true)
	},
}

var cpCmd = &cobra.Command{
	Use:     "cp SOURCE DEST",
	Aliases: []string{"copy"},
	Short:   "Duplicate a secret without decrypting it",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMoveOrCopy(args[0], args[1], false)
	},
}

func runMoveOrCopy(from, to string, move bool) {
	e, err := openEnv()
	if err != nil {
		fatal(err)
	}

	result, err := e.store.Find(from)
	if err != nil {
		fatal(prserr.New(prserr.CodeSecretRead, "failed to search the store").WithCause(err))
	}
	if !result.Exact {
		printAmbiguousMatches(result, from)
		return
	}

	destPath, err := e.store.NormalizeSecretPath(to, filepath.Base(result.One.Name), true)
	if err != nil {
		fatal(prserr.New(prserr.CodeSecretNormalizePath, "failed to resolve destination path").WithCause(err))
	}
	dest := store.Secret{Name: to, Path: destPath}

	if err := e.sync.Prepare(); err != nil {
		fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to prepare sync").WithCause(err))
	}

	verb, verbPast := "Copy", "Copied"
	if move {
		verb, verbPast = "Move", "Moved"
		err = e.store.Move(result.One, dest)
	} else {
		err = e.store.Duplicate(result.One, dest)
	}
	if err != nil {
		fatal(prserr.New(prserr.CodeSecretWrite, fmt.Sprintf("failed to %s %s", verb, from)).WithCause(err))
	}

	if err := e.sync.Finalize(fmt.Sprintf("%s %s to %s", verb, from, to)); err != nil {
		fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to finalize sync").WithCause(err))
	}

	fmt.Printf("%s %s to %s\n", verbPast, from, to)
}
