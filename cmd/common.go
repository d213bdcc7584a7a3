package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/illarion/catospher/internal/config"
	"github.com/illarion/catospher/internal/core"
	"github.com/illarion/catospher/internal/credential"
	"github.com/illarion/catospher/internal/crypto"
	"github.com/illarion/catospher/internal/git"
	"github.com/illarion/catospher/internal/logger"
	"github.com/illarion/catospher/internal/prompt"
	"github.com/illarion/catospher/internal/storage"
)

const filePermSecure = 0600

var (
	errEmptyInput      = errors.New("nothing to encrypt")
	errNoCredential    = errors.New("no credential supplied")
	errCredentialStdio = errors.New("-credential-out must name a file, not stdout")
)

// Replaced in tests.
var (
	readSecret      = prompt.ReadSecret
	confirm         = prompt.Confirm
	copyToClipboard = clipboard.WriteAll
	loadConfig      = config.Load
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func stdStreams() streams {
	return streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// HandleError prints err in user terms and exits
func HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
	os.Exit(1)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, core.ErrAuthentication):
		return "wrong credential or corrupted envelope"
	case errors.Is(err, core.ErrRandomness):
		return "secure random source unavailable"
	case errors.Is(err, core.ErrFormat):
		return err.Error()
	case errors.Is(err, errEmptyInput):
		return "nothing to encrypt (empty input)"
	default:
		return err.Error()
	}
}

func newLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	return logger.New("cli", cfg.LogLevel, cfg.LogFormat, w)
}

// newEngine builds the engine that produces new envelopes.
func newEngine(cfg *config.Config, log *logger.Logger) (*core.Engine, error) {
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}

	opts := append(boundOptions(cfg),
		core.WithCredentialKind(kind),
		core.WithPassphraseLength(cfg.PassphraseLength),
		core.WithKDF(cfg.KDF),
		core.WithIterations(cfg.Iterations),
		core.WithLogger(log),
	)
	return core.New(opts...)
}

// newDecryptEngine builds an engine for opening envelopes. KDF and
// iterations come from each envelope, so the settings for new envelopes
// are left out.
func newDecryptEngine(cfg *config.Config, log *logger.Logger) (*core.Engine, error) {
	return core.New(append(boundOptions(cfg), core.WithLogger(log))...)
}

func boundOptions(cfg *config.Config) []core.Option {
	return []core.Option{
		core.WithIterationBounds(crypto.PBKDF2SHA256, cfg.PBKDF2MinIterations, cfg.PBKDF2MaxIterations),
		core.WithIterationBounds(crypto.Argon2ID, cfg.Argon2MinIterations, cfg.Argon2MaxIterations),
	}
}

// readText reads from path, or from in when path is empty or "-".
func readText(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// writeText writes text plus a newline to path, or to out when path is empty.
func writeText(path string, out io.Writer, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(out, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), filePermSecure); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// warnGitExposure warns when a secret file lands unignored in a git work tree.
func warnGitExposure(path string, errOut io.Writer) {
	if path == "" || path == "-" {
		return
	}
	status, err := git.CheckSecretFile(path)
	if err != nil {
		return
	}
	if w := git.Warning(status); w != "" {
		fmt.Fprintln(errOut, w)
	}
}

func copyValue(what, value string, log *logger.Logger, errOut io.Writer) {
	if err := copyToClipboard(value); err != nil {
		log.Warn().Err(err).Msg("clipboard unavailable")
		fmt.Fprintf(errOut, "warning: could not copy %s to clipboard\n", what)
		return
	}
	fmt.Fprintf(errOut, "copied %s to clipboard\n", what)
}

// persistSnapshot merges snap into the state store when persistence is on.
// Failures only warn: the operation itself already succeeded.
func persistSnapshot(cfg *config.Config, snap *storage.Snapshot, log *logger.Logger) {
	if !cfg.Persist() {
		return
	}

	db, err := storage.Open(cfg.StateFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.StateFile).Msg("cannot open state store")
		return
	}
	defer db.Close()

	if err := db.UpdateSnapshot(snap); err != nil {
		log.Warn().Err(err).Msg("cannot save state snapshot")
	}
}

func applyCredentialFlags(cfg *config.Config, kind string, length int) error {
	if kind != "" {
		if _, err := credential.ParseKind(kind); err != nil {
			return err
		}
		cfg.CredentialKind = kind
	}
	if length > 0 {
		cfg.PassphraseLength = length
		// -length only makes sense for passphrases
		if kind == "" {
			cfg.CredentialKind = credential.KindPassphrase.String()
		}
	}
	return nil
}

func maskCredential(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", len(s))
}
