package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
	"github.com/spf13/cobra"
)

var insertOpts struct {
	Multiline bool
	Force     bool
}

var insertCmd = &cobra.Command{
	Use:     "insert NAME",
	Aliases: []string{"add"},
	Short:   "Insert a new secret, reading its contents from stdin",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}

		path, err := e.store.NormalizeSecretPath(args[0], args[0], true)
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretNormalizePath, "failed to resolve secret path").WithCause(err))
		}
		if !insertOpts.Force {
			if _, statErr := os.Lstat(path); statErr == nil {
				fatal(prserr.New(prserr.CodeSecretWrite, fmt.Sprintf("%s already exists (use --force to overwrite)", args[0])))
			}
		}

		data, err := readStdinSecret(insertOpts.Multiline)
		if err != nil {
			fatal(prserr.New(prserr.CodeSecretRead, "failed to read secret contents from stdin").WithCause(err))
		}

		recipients, err := e.store.LoadRecipients(e.ctx)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoContext, "failed to load recipient set").WithCause(err))
		}

		if err := e.sync.Prepare(); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to prepare sync").WithCause(err))
		}

		plaintext := secretbytes.NewPlaintextBytes(data)
		defer plaintext.Close()
		if err := crypto.EncryptFile(e.ctx, recipients, plaintext, path); err != nil {
			fatal(prserr.New(prserr.CodeCryptoEncrypt, "failed to encrypt secret").WithCause(err))
		}

		if err := e.sync.Finalize(fmt.Sprintf("Add %s", args[0])); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to finalize sync").WithCause(err))
		}

		fmt.Printf("Inserted %s\n", args[0])
	},
}

func init() {
	insertCmd.Flags().BoolVarP(&insertOpts.Multiline, "multiline", "m", false, "Read until EOF instead of a single line")
	insertCmd.Flags().BoolVarP(&insertOpts.Force, "force", "f", false, "Overwrite an existing secret without confirmation")
}

func readStdinSecret(multiline bool) ([]byte, error) {
	if multiline {
		return io.ReadAll(os.Stdin)
	}
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no input provided on stdin")
	}
	return scanner.Bytes(), nil
}
