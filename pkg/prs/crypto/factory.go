package crypto

import "sync"

// Backend identifies a compile-time-selectable context implementation.
type Backend int

const (
	// BackendLibrary is the in-process gopenpgp/go-crypto binding.
	BackendLibrary Backend = iota
	// BackendSubprocess drives the gpg executable.
	BackendSubprocess
)

// Opener constructs a Context for a Proto. Concrete backends register
// themselves here; which ones are registered is decided by which backend
// packages the caller imports (a build-time choice, as in the original
// design — importing crypto/backend/gopenpgp and/or
// crypto/backend/gnupgbin is what "compiles in" a variant).
type Opener func(Options) (Context, error)

// Options configures context construction across backends.
type Options struct {
	// GPGTTY makes either backend export GPG_TTY (from the `tty` command,
	// when not already set) to the gpg processes it runs, for terminal
	// passphrase entry. It does not switch pinentry to loopback mode.
	GPGTTY bool

	// Program overrides the gpg executable path used by either backend;
	// empty means "resolve from PATH".
	Program string

	// PreferBackend, when non-nil, restricts NewContext to openers
	// registered under that Backend instead of trying every registered
	// opener for the protocol in registration order. Set this from the
	// config's gpg.backend setting via BackendByName.
	PreferBackend *Backend
}

// BackendByName maps a config backend name ("gopenpgp" for the
// library-binding backend, "gnupgbin" for the subprocess backend) to its
// Backend constant. ok is false for the empty string or any unrecognized
// name, meaning "no preference."
func BackendByName(name string) (backend Backend, ok bool) {
	switch name {
	case "gopenpgp":
		return BackendLibrary, true
	case "gnupgbin":
		return BackendSubprocess, true
	default:
		return 0, false
	}
}

var (
	registryMu sync.Mutex
	registry   = map[Proto][]struct {
		backend Backend
		open    Opener
	}{}
)

// Register adds an opener for proto under backend. Backend packages call
// this from an init() function.
func Register(proto Proto, backend Backend, open Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[proto] = append(registry[proto], struct {
		backend Backend
		open    Opener
	}{backend, open})
}

// NewContext returns the first available backend supporting proto, in
// registration order. Returns *ErrUnsupported if none is registered.
func NewContext(proto Proto, opts Options) (Context, error) {
	registryMu.Lock()
	candidates := append([]struct {
		backend Backend
		open    Opener
	}(nil), registry[proto]...)
	registryMu.Unlock()

	if opts.PreferBackend != nil {
		var filtered []struct {
			backend Backend
			open    Opener
		}
		for _, c := range candidates {
			if c.backend == *opts.PreferBackend {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	if len(candidates) == 0 {
		return nil, &ErrUnsupported{Proto: proto}
	}

	var lastErr error
	for _, c := range candidates {
		ctx, err := c.open(opts)
		if err == nil {
			return ctx, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Pool caches at most one context per protocol, created lazily. It is not
// a connection pool: exhausting one entry does not grow it, it is simply
// replaced on the next Get for that protocol if the caller chooses to.
type Pool struct {
	mu       sync.Mutex
	opts     Options
	contexts map[Proto]Context
}

// NewPool creates an empty context pool using opts for any context it
// lazily creates.
func NewPool(opts Options) *Pool {
	return &Pool{opts: opts, contexts: map[Proto]Context{}}
}

// Get returns the cached context for proto, creating one via NewContext
// if absent.
func (p *Pool) Get(proto Proto) (Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx, ok := p.contexts[proto]; ok {
		return ctx, nil
	}
	ctx, err := NewContext(proto, p.opts)
	if err != nil {
		return nil, err
	}
	p.contexts[proto] = ctx
	return ctx, nil
}
