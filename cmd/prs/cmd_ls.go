package main

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/store"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:     "ls [QUERY]",
	Aliases: []string{"list"},
	Short:   "List secrets, optionally filtered by a substring query",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		var secrets []store.Secret
		if len(args) == 1 {
			secrets, err = e.store.Filter(args[0])
		} else {
			secrets, err = e.store.Iter(store.DefaultIterConfig())
		}
		if err != nil {
			fatal(err)
		}
		store.SortByName(secrets)

		for _, s := range secrets {
			marker := ""
			if s.Symlink {
				marker = " ->"
			}
			fmt.Printf("%s%s\n", s.Name, marker)
		}
	},
}
