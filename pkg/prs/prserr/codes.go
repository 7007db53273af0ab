// Package prserr defines the structured error taxonomy shared across
// the core's components, along with the exit-code mapping the CLI uses
// to translate an error into a process exit status.
package prserr

// Code is a stable, machine-checkable error kind. Components wrap
// errors with a Code so callers can branch with errors.Is without
// depending on message text.
type Code string

const (
	// Store errors.
	CodeNoRootDir              Code = "STORE_NO_ROOT_DIR"
	CodeExpandPath             Code = "STORE_EXPAND_PATH"
	CodeCreateDir              Code = "STORE_CREATE_DIR"
	CodeTargetDirWithoutHint   Code = "STORE_TARGET_DIR_WITHOUT_NAME_HINT"

	// Secret errors.
	CodeSecretNoneSelected Code = "SECRET_NONE_SELECTED"
	CodeSecretRead         Code = "SECRET_READ"
	CodeSecretWrite        Code = "SECRET_WRITE"
	CodeSecretRemove       Code = "SECRET_REMOVE"
	CodeSecretNormalizePath Code = "SECRET_NORMALIZE_PATH"

	// Crypto errors.
	CodeCryptoUnsupported       Code = "CRYPTO_UNSUPPORTED_PROTO"
	CodeCryptoContext           Code = "CRYPTO_CONTEXT"
	CodeCryptoEncrypt           Code = "CRYPTO_ENCRYPT"
	CodeCryptoDecrypt           Code = "CRYPTO_DECRYPT"
	CodeCryptoNoSecretKey       Code = "CRYPTO_NO_SECRET_KEY"
	CodeCryptoUnknownFingerprint Code = "CRYPTO_UNKNOWN_FINGERPRINT"
	CodeCryptoImport            Code = "CRYPTO_IMPORT"
	CodeCryptoExport            Code = "CRYPTO_EXPORT"
	CodeCryptoUnexpectedOutput  Code = "CRYPTO_UNEXPECTED_OUTPUT"
	CodeCryptoUnsupportedVersion Code = "CRYPTO_UNSUPPORTED_VERSION"
	CodeCryptoAlgorithmNotAllowed Code = "CRYPTO_ALGORITHM_NOT_ALLOWED"

	// Sync errors.
	CodeSyncNoSync     Code = "SYNC_NO_SYNC"
	CodeSyncDirty      Code = "SYNC_DIRTY"
	CodeSyncRepoState  Code = "SYNC_REPO_STATE_BUSY"
	CodeSyncGitInvoke  Code = "SYNC_GIT_INVOKE"
	CodeSyncGitStatus  Code = "SYNC_GIT_STATUS"

	// Viewer errors.
	CodeViewerNotTTY     Code = "VIEWER_NOT_TTY"
	CodeViewerRawTerminal Code = "VIEWER_RAW_TERMINAL"
	CodeViewerRender     Code = "VIEWER_RENDER"
	CodeViewerPagerSpawn Code = "VIEWER_PAGER_SPAWN"

	// General/config errors, carried from the ambient stack.
	CodeGeneralError Code = "GENERAL_ERROR"
	CodeConfigNotFound   Code = "CONFIG_NOT_FOUND"
	CodeConfigInvalid    Code = "CONFIG_INVALID"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeConfigSaveError  Code = "CONFIG_SAVE_ERROR"
)

// ExitCode is the numeric process exit status a Code maps to.
type ExitCode int

const (
	ExitSuccess      ExitCode = 0
	ExitGeneralError ExitCode = 1
	ExitConfigError  ExitCode = 2
	ExitStoreError   ExitCode = 3
	ExitCryptoError  ExitCode = 4
	ExitSyncError    ExitCode = 5
	ExitViewerError  ExitCode = 6
)

// Int returns the integer value of the exit code.
func (e ExitCode) Int() int { return int(e) }

var codeToExitCode = map[Code]ExitCode{
	CodeNoRootDir:            ExitStoreError,
	CodeExpandPath:           ExitStoreError,
	CodeCreateDir:            ExitStoreError,
	CodeTargetDirWithoutHint: ExitStoreError,

	CodeSecretNoneSelected:  ExitStoreError,
	CodeSecretRead:          ExitStoreError,
	CodeSecretWrite:         ExitStoreError,
	CodeSecretRemove:        ExitStoreError,
	CodeSecretNormalizePath: ExitStoreError,

	CodeCryptoUnsupported:        ExitCryptoError,
	CodeCryptoContext:            ExitCryptoError,
	CodeCryptoEncrypt:            ExitCryptoError,
	CodeCryptoDecrypt:            ExitCryptoError,
	CodeCryptoNoSecretKey:        ExitCryptoError,
	CodeCryptoUnknownFingerprint: ExitCryptoError,
	CodeCryptoImport:             ExitCryptoError,
	CodeCryptoExport:             ExitCryptoError,
	CodeCryptoUnexpectedOutput:   ExitCryptoError,
	CodeCryptoUnsupportedVersion: ExitCryptoError,
	CodeCryptoAlgorithmNotAllowed: ExitCryptoError,

	CodeSyncNoSync:    ExitSyncError,
	CodeSyncDirty:     ExitSyncError,
	CodeSyncRepoState: ExitSyncError,
	CodeSyncGitInvoke: ExitSyncError,
	CodeSyncGitStatus: ExitSyncError,

	CodeViewerNotTTY:      ExitViewerError,
	CodeViewerRawTerminal: ExitViewerError,
	CodeViewerRender:      ExitViewerError,
	CodeViewerPagerSpawn:  ExitViewerError,

	CodeGeneralError:     ExitGeneralError,
	CodeConfigNotFound:   ExitConfigError,
	CodeConfigInvalid:    ExitConfigError,
	CodeConfigParseError: ExitConfigError,
	CodeConfigSaveError:  ExitConfigError,
}

// GetExitCode returns the numeric exit code for a Code, defaulting to a
// general error for any code not explicitly mapped.
func (c Code) GetExitCode() ExitCode {
	if exit, ok := codeToExitCode[c]; ok {
		return exit
	}
	return ExitGeneralError
}
