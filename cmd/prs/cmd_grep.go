package main

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/spf13/cobra"
)

var grepCmd = &cobra.Command{
	Use:   "grep PATTERN",
	Short: "Search decrypted secret contents with a regular expression",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		matches, failures, err := e.store.Grep(args[0], e.ctx)
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretRead, "invalid search pattern").WithCause(err))
		}

		for _, m := range matches {
			for _, line := range m.Lines {
				fmt.Printf("%s: %s\n", m.Secret.Name, line)
			}
		}
		for _, f := range failures {
			fmt.Printf("warning: could not decrypt %s: %v\n", f.Secret.Name, f.Err)
		}
	},
}
