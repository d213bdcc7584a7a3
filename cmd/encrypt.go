package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/illarion/catospher/internal/keyring"
	"github.com/illarion/catospher/internal/storage"
)

// EncryptOptions are the encrypt command flags.
type EncryptOptions struct {
	Kind          string
	Length        int
	KDF           string
	Iterations    int
	Text          string
	InFile        string
	OutFile       string
	CredentialOut string
	Keyring       bool
	Copy          string
}

// Encrypt seals plaintext into a new envelope under a generated credential
func Encrypt(ctx context.Context, opts EncryptOptions) {
	if err := encrypt(ctx, opts, stdStreams()); err != nil {
		HandleError(err)
	}
}

func encrypt(ctx context.Context, opts EncryptOptions, st streams) error {
	switch opts.Copy {
	case "", "credential", "envelope":
	default:
		return fmt.Errorf("-copy must be credential or envelope, got %q", opts.Copy)
	}
	// The envelope already goes to stdout; the credential must not follow it.
	if opts.CredentialOut == "-" {
		return errCredentialStdio
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyCredentialFlags(cfg, opts.Kind, opts.Length); err != nil {
		return err
	}
	if opts.KDF != "" {
		cfg.KDF = opts.KDF
		if opts.Iterations == 0 {
			cfg.Iterations = 0
		}
	}
	if opts.Iterations > 0 {
		cfg.Iterations = opts.Iterations
	}

	log := newLogger(cfg, st.err)
	engine, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	plaintext := opts.Text
	if plaintext == "" {
		if plaintext, err = readText(opts.InFile, st.in); err != nil {
			return err
		}
	}
	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return errEmptyInput
	}

	sealed, err := engine.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return err
	}

	if err := writeText(opts.OutFile, st.out, sealed.Text); err != nil {
		return err
	}
	if opts.CredentialOut != "" {
		if err := writeText(opts.CredentialOut, st.out, sealed.Credential); err != nil {
			return err
		}
		warnGitExposure(opts.CredentialOut, st.err)
	} else {
		fmt.Fprintf(st.err, "Credential: %s\n", sealed.Credential)
	}

	fingerprint := sealed.Envelope.Fingerprint()
	if opts.Keyring || cfg.KeyringEnabled() {
		if err := keyring.SaveCredential(fingerprint, sealed.Credential); err != nil {
			log.Warn().Err(err).Msg("keyring unavailable")
			fmt.Fprintf(st.err, "warning: credential not saved to keyring\n")
		} else {
			fmt.Fprintf(st.err, "credential saved to keyring (%s)\n", fingerprint)
		}
	}

	switch opts.Copy {
	case "credential":
		copyValue("credential", sealed.Credential, log, st.err)
	case "envelope":
		copyValue("envelope", sealed.Text, log, st.err)
	}

	persistSnapshot(cfg, &storage.Snapshot{
		Plaintext:      plaintext,
		EnvelopeOutput: sealed.Text,
		Credential:     sealed.Credential,
	}, log)

	log.Info().
		Str("kdf", engine.KDF()).
		Int("iterations", engine.Iterations()).
		Str("fingerprint", fingerprint).
		Msg("encrypted")
	return nil
}
