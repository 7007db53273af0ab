package main

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/recrypt"
	"github.com/prsgo/prs/pkg/prs/store"
	"github.com/spf13/cobra"
)

var recipientsCmd = &cobra.Command{
	Use:     "recipients",
	Aliases: []string{"keys"},
	Short:   "Manage the store's recipient set",
}

var recipientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the store's current recipients",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		recipients, err := e.store.LoadRecipients(e.ctx)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoContext, "failed to load recipient set").WithCause(err))
		}
		for _, k := range recipients.Keys() {
			fmt.Println(k.String())
		}
	},
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add FINGERPRINT...",
	Short: "Add one or more recipients and re-encrypt every secret",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		mutateRecipients(e, func(r crypto.Recipients) (crypto.Recipients, error) {
			keys, err := crypto.FindPublicKeys(e.ctx, args)
			if err != nil {
				return r, err
			}
			if len(keys) != len(args) {
				return r, fmt.Errorf("one or more fingerprints did not match a key in the local keyring")
			}
			for _, k := range keys {
				if !e.cfg.IsAlgorithmAllowed(k.Algo, k.Bits, k.Curve) {
					return r, fmt.Errorf("key %s does not meet the configured algorithm policy (%s)",
						k.FingerprintOf(true), e.cfg.AllowedAlgorithmsString())
				}
			}
			for _, k := range keys {
				r.Add(k)
			}
			return r, nil
		}, "Add recipient(s)")
	},
}

var recipientsRemoveCmd = &cobra.Command{
	Use:   "remove FINGERPRINT...",
	Short: "Remove one or more recipients and re-encrypt every secret",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		mutateRecipients(e, func(r crypto.Recipients) (crypto.Recipients, error) {
			for _, fp := range args {
				for _, k := range r.Keys() {
					if crypto.FingerprintsEqual(k.Fingerprint, fp) {
						r.Remove(k)
					}
				}
			}
			return r, nil
		}, "Remove recipient(s)")
	},
}

var recipientsImportMissingCmd = &cobra.Command{
	Use:   "import-missing",
	Short: "Import any recipient public keys exported under .public-keys/ but missing locally",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		results, err := e.store.ImportMissingKeys(e.ctx)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoImport, "failed to import missing keys").WithCause(err))
		}
		for _, r := range results {
			status := "imported"
			if !r.Imported {
				status = "failed"
			}
			fmt.Printf("%s: %s\n", r.Fingerprint, status)
		}
	},
}

func init() {
	recipientsCmd.AddCommand(recipientsListCmd)
	recipientsCmd.AddCommand(recipientsAddCmd)
	recipientsCmd.AddCommand(recipientsRemoveCmd)
	recipientsCmd.AddCommand(recipientsImportMissingCmd)
}

// mutateRecipients applies mutate to the store's current recipient set,
// saves the result, and re-encrypts every secret for the new set,
// reporting per-secret failures without aborting.
func mutateRecipients(e *env, mutate func(crypto.Recipients) (crypto.Recipients, error), commitMsg string) {
	recipients, err := e.store.LoadRecipients(e.ctx)
	if err != nil {
		fatal(prserr.New(prserr.CodeCryptoContext, "failed to load recipient set").WithCause(err))
	}

	recipients, err = mutate(recipients)
	if err != nil {
		fatal(prserr.New(prserr.CodeCryptoUnknownFingerprint, "failed to resolve recipients").WithCause(err))
	}

	if err := e.sync.Prepare(); err != nil {
		fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to prepare sync").WithCause(err))
	}

	if err := e.store.SaveRecipients(e.ctx, recipients); err != nil {
		fatal(prserr.New(prserr.CodeCreateDir, "failed to save recipient set").WithCause(err))
	}

	secrets, err := e.store.Iter(store.DefaultIterConfig())
	if err != nil {
		fatal(prserr.New(prserr.CodeSecretRead, "failed to enumerate secrets").WithCause(err))
	}
	secrets = recrypt.FilterRegular(secrets)

	failures := recrypt.Run(e.ctx, recipients, secrets, func(i, total int, name string) {
		fmt.Printf("re-encrypting %d/%d: %s\n", i+1, total, name)
	})
	for _, f := range failures {
		fmt.Printf("warning: failed to re-encrypt %s: %v\n", f.Secret.Name, f.Err)
	}

	if err := e.sync.Finalize(commitMsg); err != nil {
		fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to finalize sync").WithCause(err))
	}
}
