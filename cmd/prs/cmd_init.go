package main

import (
	"fmt"
	"os"

	"github.com/prsgo/prs/pkg/prs/config"
	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/store"
	"github.com/prsgo/prs/pkg/prs/util"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init FINGERPRINT...",
	Short: "Initialize a new password store",
	Long: `Create the store directory if needed and write .gpg-id with the
given recipient fingerprints, so every secret added afterward is
encrypted for exactly this set.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			fatal(err)
		}
		cfg, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			fatal(err)
		}
		dir, err := resolveStoreDir(cfg)
		if err != nil {
			fatal(err)
		}

		if err := os.MkdirAll(dir, 0o700); err != nil {
			fatal(prserr.New(prserr.CodeCreateDir, fmt.Sprintf("failed to create store directory %s", dir)).WithCause(err))
		}

		s, err := store.Open(dir)
		if err != nil {
			fatal(prserr.New(prserr.CodeNoRootDir, "failed to open store after creating it").WithCause(err))
		}

		ctx, err := openCryptoContext(cfg)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoContext, "failed to initialize crypto backend").WithCause(err))
		}

		keys, err := crypto.FindPublicKeys(ctx, args)
		if err != nil {
			fatal(prserr.New(prserr.CodeCryptoUnknownFingerprint, "failed to resolve recipient keys").WithCause(err))
		}
		if len(keys) != len(args) {
			fatal(prserr.New(prserr.CodeCryptoUnknownFingerprint, "one or more fingerprints did not match a key in the local keyring"))
		}
		for _, k := range keys {
			if !cfg.IsAlgorithmAllowed(k.Algo, k.Bits, k.Curve) {
				fatal(prserr.New(prserr.CodeCryptoAlgorithmNotAllowed,
					fmt.Sprintf("key %s does not meet the configured algorithm policy", util.FormatFingerprint(k.Fingerprint))).
					WithHint(cfg.AllowedAlgorithmsString()))
			}
		}

		recipients := crypto.NewRecipients(keys)
		if err := s.SaveRecipients(ctx, recipients); err != nil {
			fatal(prserr.New(prserr.CodeCreateDir, "failed to save recipient set").WithCause(err))
		}

		fmt.Printf("Password store initialized for %d recipient(s) at %s\n", len(keys), dir)
		for _, k := range keys {
			fmt.Println(util.FormatFingerprint(k.Fingerprint))
		}
	},
}
