package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/illarion/catospher/internal/core"
	"github.com/illarion/catospher/internal/crypto"
	"github.com/illarion/catospher/internal/envelope"
	"github.com/illarion/catospher/internal/keyring"
	"github.com/illarion/catospher/internal/logger"
	"github.com/illarion/catospher/internal/prompt"
	"github.com/illarion/catospher/internal/storage"
)

// DecryptOptions are the decrypt command flags.
type DecryptOptions struct {
	InFile    string
	OutFile   string
	Copy      bool
	NoKeyring bool
}

// CredentialSource tells where a credential came from
type CredentialSource int

const (
	SourceEnv CredentialSource = iota
	SourceKeyring
	SourcePrompt
)

// Decrypt opens an envelope with a user-supplied credential
func Decrypt(ctx context.Context, opts DecryptOptions) {
	if err := decrypt(ctx, opts, stdStreams()); err != nil {
		HandleError(err)
	}
}

func decrypt(ctx context.Context, opts DecryptOptions, st streams) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg, st.err)
	engine, err := newDecryptEngine(cfg, log)
	if err != nil {
		return err
	}

	text, err := readText(opts.InFile, st.in)
	if err != nil {
		return err
	}
	env, err := envelope.Parse(text)
	if err != nil {
		return err
	}

	useKeyring := !opts.NoKeyring
	plaintext, cred, err := openWithRetry(ctx, engine, env, useKeyring, log)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(plaintext)

	decrypted := string(plaintext)
	if err := writeText(opts.OutFile, st.out, decrypted); err != nil {
		return err
	}
	warnGitExposure(opts.OutFile, st.err)

	if opts.Copy {
		copyValue("decrypted text", decrypted, log, st.err)
	}

	persistSnapshot(cfg, &storage.Snapshot{
		EnvelopeInput:   strings.TrimSpace(text),
		CredentialInput: cred,
		Decrypted:       decrypted,
	}, log)

	return nil
}

// resolveCredential checks the environment, then the keyring, then prompts.
func resolveCredential(fingerprint string, useKeyring bool) ([]byte, CredentialSource, error) {
	if cred := prompt.CredentialFromEnv(); cred != nil {
		return cred, SourceEnv, nil
	}

	if useKeyring {
		if cred, err := keyring.GetCredential(fingerprint); err == nil && cred != "" {
			return []byte(cred), SourceKeyring, nil
		}
	}

	cred, err := readSecret("Enter credential: ")
	if err != nil {
		return nil, SourcePrompt, err
	}
	if len(cred) == 0 {
		return nil, SourcePrompt, errNoCredential
	}
	return cred, SourcePrompt, nil
}

// openWithRetry decrypts env, falling back to a prompt once when a credential
// cached in the keyring turns out to be stale.
func openWithRetry(ctx context.Context, engine *core.Engine, env *envelope.Envelope, useKeyring bool, log *logger.Logger) ([]byte, string, error) {
	fingerprint := env.Fingerprint()

	cred, source, err := resolveCredential(fingerprint, useKeyring)
	if err != nil {
		return nil, "", err
	}

	log.Debug().Stringer("source", source).Str("fingerprint", fingerprint).Msg("credential resolved")

	plaintext, err := engine.DecryptEnvelope(ctx, env, cred)
	if errors.Is(err, core.ErrAuthentication) && source == SourceKeyring {
		log.Warn().Stringer("source", source).Str("fingerprint", fingerprint).Msg("stale keyring credential")
		crypto.ClearBytes(cred)

		if cred, err = readSecret("Keyring credential rejected. Enter credential: "); err != nil {
			return nil, "", err
		}
		if len(cred) == 0 {
			return nil, "", errNoCredential
		}
		plaintext, err = engine.DecryptEnvelope(ctx, env, cred)
	}
	if err != nil {
		crypto.ClearBytes(cred)
		return nil, "", err
	}

	credStr := string(cred)
	crypto.ClearBytes(cred)
	return plaintext, credStr, nil
}

func (s CredentialSource) String() string {
	switch s {
	case SourceEnv:
		return "environment"
	case SourceKeyring:
		return "keyring"
	default:
		return "prompt"
	}
}
