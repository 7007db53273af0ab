package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
	"github.com/prsgo/prs/pkg/prs/util"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit QUERY",
	Short: "Decrypt a secret into a scratch file, open it in $EDITOR, and re-encrypt on save",
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

		var path string
		var existing secretbytes.Plaintext
		if result.Exact {
			path = result.One.Path
			existing, err = crypto.DecryptFile(e.ctx, path)
			if err != nil {
				fatal(prserr.New(prserr.CodeCryptoDecrypt, "failed to decrypt existing secret").WithCause(err))
			}
		} else {
			path, err = e.store.NormalizeSecretPath(args[0], args[0], true)
			if err != nil {
				fatal(prserr.New(prserr.CodeSecretNormalizePath, "failed to resolve secret path").WithCause(err))
			}
		}
		defer existing.Close()

		scratch := filepath.Join(util.ScratchDir(), fmt.Sprintf("prs-edit-%d.txt", os.Getpid()))
		if err := os.WriteFile(scratch, existing.Unsecure(), 0o600); err != nil {
			fatal(prserr.New(prserr.CodeSecretWrite, "failed to create scratch file").WithCause(err))
		}
		defer os.Remove(scratch)

		editorCmd := exec.Command(util.Editor(), scratch)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			fatal(prserr.New(prserr.CodeSecretWrite, "editor exited with an error").WithCause(err))
		}

		edited, err := os.ReadFile(scratch)
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretRead, "failed to read back the edited scratch file").WithCause(err))
		}

		recipients, err := e.store.LoadRecipients(e.ctx)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoContext, "failed to load recipient set").WithCause(err))
		}

		if err := e.sync.Prepare(); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to prepare sync").WithCause(err))
		}

		plaintext := secretbytes.NewPlaintextBytes(edited)
		defer plaintext.Close()
		if err := crypto.EncryptFile(e.ctx, recipients, plaintext, path); err != nil {
			fatal(prserr.New(prserr.CodeCryptoEncrypt, "failed to encrypt edited secret").WithCause(err))
		}

		if err := e.sync.Finalize(fmt.Sprintf("Edit %s", args[0])); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to finalize sync").WithCause(err))
		}

		fmt.Printf("Edited %s\n", args[0])
	},
}
