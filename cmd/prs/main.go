// Command prs is the pass(1)-compatible password manager CLI built on
// top of the pkg/prs core: a filesystem-backed store, pluggable GPG
// crypto backends, a recipient-set manager, a git sync layer, and the
// TTY viewer / clipboard handoff.
package main

import (
	"fmt"
	"os"

	_ "github.com/prsgo/prs/pkg/prs/crypto/backend/gnupgbin"
	_ "github.com/prsgo/prs/pkg/prs/crypto/backend/gopenpgp"
	"github.com/prsgo/prs/pkg/prs/prserr"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		_ = rootCmd.Help()
		os.Exit(prserr.ExitGeneralError.Int())
	}
}
