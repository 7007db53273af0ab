package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "unknown"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "prs",
	Short: "A pass(1)-compatible password manager",
	Long: `prs: a filesystem-backed password manager compatible with the
standard pass(1) store layout, with a pluggable GPG crypto backend and
git-backed synchronization.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.StoreDir, "store", "d", "", "Path to the password store (overrides PASSWORD_STORE_DIR)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.ConfigPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "V", false, "Verbose diagnostic output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(recipientsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(internalClipRevertCmd)
}
