package main

import (
	"fmt"
	"time"

	"github.com/prsgo/prs/pkg/prs/clipboard"
	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/viewer"
	"github.com/spf13/cobra"
)

var showOpts struct {
	Clip    bool
	Timeout time.Duration
}

var showCmd = &cobra.Command{
	Use:   "show QUERY",
	Short: "Decrypt and display a secret",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		result, err := e.store.Find(args[0])
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretRead, "failed to search the store").WithCause(err))
		}
		if !result.Exact {
			printAmbiguousMatches(result, args[0])
			return
		}

		plaintext, err := crypto.DecryptFile(e.ctx, result.One.Path)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoDecrypt, fmt.Sprintf("failed to decrypt %s", result.One.Name)).WithCause(err))
		}
		defer plaintext.Close()

		if showOpts.Clip {
			mgr, err := clipboard.NewManager()
			if err != nil {
				fatal(prserr.New(prserr.CodeGeneralError, "no clipboard tool available").WithCause(err))
			}
			if err := mgr.CopyTimeout(plaintext.Unsecure(), showOpts.Timeout); err != nil {
				fatal(prserr.New(prserr.CodeGeneralError, "failed to copy to clipboard").WithCause(err))
			}
			fmt.Printf("Copied %s to clipboard, clearing in %s\n", result.One.Name, showOpts.Timeout)
			return
		}

		if err := viewer.View(string(plaintext.Unsecure()), viewer.Options{
			AppName:    "prs",
			SecretName: result.One.Name,
		}); err != nil {
			fatal(prserr.New(prserr.CodeViewerNotTTY, "failed to display secret").WithCause(err))
		}
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showOpts.Clip, "clip", "c", false, "Copy to clipboard instead of displaying")
	showCmd.Flags().DurationVarP(&showOpts.Timeout, "timeout", "t", 45*time.Second, "Clipboard clear timeout")
}
