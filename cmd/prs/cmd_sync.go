package main

import (
	"fmt"
	"time"

	"github.com/prsgo/prs/pkg/prs/config"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and drive the store's git synchronization",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the store's sync readiness",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		readyness, state, err := e.sync.Readyness()
		if err != nil {
			fatal(prserr.New(prserr.CodeSyncGitStatus, "failed to determine sync readiness").WithCause(err))
		}
		if state != "" {
			fmt.Printf("%s (%s)\n", readyness, state)
			return
		}
		fmt.Println(readyness)
	},
}

var syncCommitCmd = &cobra.Command{
	Use:   "commit MESSAGE",
	Short: "Manually commit every pending change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		if err := e.sync.CommitAll(args[0], true); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to commit").WithCause(err))
		}
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard uncommitted changes with a hard reset",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		if err := e.sync.ResetHardAll(); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to reset").WithCause(err))
		}
	},
}

var syncRemoteCmd = &cobra.Command{
	Use:   "remote [URL]",
	Short: "Show or set the store's git remote URL",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fatal(err)
		}
		if len(args) == 0 {
			url, err := e.sync.RemoteGetURL("")
			if err != nil {
				fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to read remote").WithCause(err))
			}
			fmt.Println(url)
			return
		}
		if err := e.sync.RemoteSetURL("", args[0]); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to set remote").WithCause(err))
		}
	},
}

var syncCloneOpts struct {
	Quiet bool
}

var syncCloneCmd = &cobra.Command{
	Use:   "clone URL",
	Short: "Clone an existing store from a git remote into an empty store directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			fatal(err)
		}
		cfg, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			fatal(prserr.New(prserr.CodeConfigInvalid, "failed to load config").WithCause(err))
		}
		dir, err := resolveStoreDir(cfg)
		if err != nil {
			fatal(err)
		}
		m := sync.NewManager(dir, sync.ManagerOptions{
			AllowDirty:        cfg.Sync.AllowDirty,
			NoSync:            cfg.Sync.NoSync,
			PushOutdatedAfter: time.Duration(cfg.Sync.PushOutdatedAfterSeconds) * time.Second,
		})
		if err := m.Clone(args[0], syncCloneOpts.Quiet); err != nil {
			fatal(prserr.New(prserr.CodeSyncGitInvoke, "failed to clone").WithCause(err))
		}
		fmt.Printf("Cloned into %s\n", dir)
	},
}

func init() {
	syncCloneCmd.Flags().BoolVarP(&syncCloneOpts.Quiet, "quiet", "q", false, "Suppress git clone output")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncCommitCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncRemoteCmd)
	syncCmd.AddCommand(syncCloneCmd)
}
