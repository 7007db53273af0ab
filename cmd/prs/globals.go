package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prsgo/prs/pkg/prs/config"
	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/prserr"
	"github.com/prsgo/prs/pkg/prs/store"
	"github.com/prsgo/prs/pkg/prs/sync"
	"github.com/prsgo/prs/pkg/prs/util"
)

// GlobalOptions holds the flags every subcommand shares.
type GlobalOptions struct {
	StoreDir   string
	ConfigPath string
	Verbose    bool
}

var globalOpts = &GlobalOptions{}

// env bundles the resolved store, crypto context, and sync manager a
// subcommand needs; it is assembled once per invocation.
type env struct {
	store *store.Store
	ctx   crypto.Context
	sync  *sync.Manager
	cfg   config.Config
}

func resolveConfigPath() (string, error) {
	if globalOpts.ConfigPath != "" {
		return globalOpts.ConfigPath, nil
	}
	paths, err := util.NewXDGPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigPath(), nil
}

func resolveStoreDir(cfg config.Config) (string, error) {
	if globalOpts.StoreDir != "" {
		return util.ExpandPath(globalOpts.StoreDir)
	}
	if cfg.StoreDir != "" {
		return util.ExpandPath(cfg.StoreDir)
	}
	return util.DefaultStoreDir()
}

// openEnv opens the store, constructs a crypto context, and wraps the
// store root in a sync Manager. It is the one place every command goes
// through to reach the core.
func openEnv() (*env, error) {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, prserr.New(prserr.CodeConfigNotFound, "failed to resolve config path").WithCause(err)
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, prserr.New(prserr.CodeConfigInvalid, "failed to load config").WithCause(err)
	}

	dir, err := resolveStoreDir(cfg)
	if err != nil {
		return nil, prserr.New(prserr.CodeNoRootDir, "failed to resolve store directory").WithCause(err)
	}

	s, err := store.Open(dir)
	if err != nil {
		return nil, prserr.New(prserr.CodeNoRootDir, fmt.Sprintf("store not found at %s", dir)).
			WithCause(err).
			WithHint(fmt.Sprintf("run `prs init %s` to create it", dir))
	}

	ctx, err := openCryptoContext(cfg)
	if err != nil {
		return nil, prserr.New(prserr.CodeCryptoContext, "failed to initialize crypto backend").WithCause(err)
	}

	syncMgr := sync.NewManager(s.Root, sync.ManagerOptions{
		AllowDirty:        cfg.Sync.AllowDirty,
		NoSync:            cfg.Sync.NoSync,
		PushOutdatedAfter: time.Duration(cfg.Sync.PushOutdatedAfterSeconds) * time.Second,
	})
	return &env{store: s, ctx: ctx, sync: syncMgr, cfg: cfg}, nil
}

// openCryptoContext builds a crypto.Options from cfg.GPG and opens a
// context for it, honoring gpg.backend when it names a registered
// backend.
func openCryptoContext(cfg config.Config) (crypto.Context, error) {
	program := cfg.GPG.Program
	if program == "PATH" {
		program = ""
	}
	opts := crypto.Options{GPGTTY: true, Program: program}
	if backend, ok := crypto.BackendByName(cfg.GPG.Backend); ok {
		opts.PreferBackend = &backend
	}
	return crypto.NewContext(crypto.ProtoGPG, opts)
}

func fatal(err error) {
	code := prserr.Print(os.Stderr, err)
	os.Exit(code.Int())
}
