package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/illarion/catospher/internal/credential"
	"github.com/illarion/catospher/internal/crypto"
	"github.com/illarion/catospher/internal/logger"
)

// Option configures an Engine.
type Option func(*Engine) error

// WithCredentialKind selects PIN or passphrase credentials.
func WithCredentialKind(kind credential.Kind) Option {
	return func(e *Engine) error {
		if kind != credential.KindPIN && kind != credential.KindPassphrase {
			return credential.ErrUnknownKind
		}
		e.kind = kind
		return nil
	}
}

// WithPassphraseLength sets the generated passphrase length.
func WithPassphraseLength(n int) Option {
	return func(e *Engine) error {
		e.length = n
		return nil
	}
}

// WithKDF selects the KDF for new envelopes by identifier.
func WithKDF(id string) Option {
	return func(e *Engine) error {
		kdf, err := crypto.LookupKDF(id)
		if err != nil {
			return err
		}
		e.kdf = kdf
		return nil
	}
}

// WithIterations sets the iteration count for new envelopes. Zero keeps
// the KDF default.
func WithIterations(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("negative iterations %d", n)
		}
		e.iterations = n
		return nil
	}
}

// WithIterationBounds overrides the accepted iteration range for one KDF.
// Zero keeps that KDF's own bound. Other KDFs are unaffected.
func WithIterationBounds(kdfID string, lo, hi int) Option {
	return func(e *Engine) error {
		kdf, err := crypto.LookupKDF(kdfID)
		if err != nil {
			return err
		}
		if lo < 0 || hi < 0 || (hi > 0 && lo > hi) {
			return fmt.Errorf("invalid %s iteration bounds %d-%d", kdf.ID(), lo, hi)
		}
		e.bounds[kdf.ID()] = iterationRange{lo: lo, hi: hi}
		return nil
	}
}

// WithRandom replaces the secure random source.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) error {
		if r == nil {
			return errors.New("nil random source")
		}
		e.rand = r
		return nil
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) error {
		if l != nil {
			e.log = l.With("core")
		}
		return nil
	}
}
