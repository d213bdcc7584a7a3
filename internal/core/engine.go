package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/illarion/catospher/internal/credential"
	"github.com/illarion/catospher/internal/crypto"
	"github.com/illarion/catospher/internal/envelope"
	"github.com/illarion/catospher/internal/logger"
)

var (
	ErrFormat         = envelope.ErrFormat
	ErrAuthentication = errors.New("wrong credential or corrupted envelope")
	ErrRandomness     = crypto.ErrRandomness

	ErrEmptyCredential = errors.New("credential must not be empty")
	ErrInvalidOption   = errors.New("invalid engine option")
)

// Sealed is the result of a successful encryption.
type Sealed struct {
	Credential string
	Envelope   *envelope.Envelope
	Text       string
}

// Engine runs the pipelines. It holds no per-operation state and is safe
// for concurrent use as long as its random source is.
type Engine struct {
	rand       io.Reader
	generator  *credential.Generator
	kind       credential.Kind
	length     int
	kdf        crypto.KDF
	iterations int
	bounds     map[string]iterationRange
	log        *logger.Logger
}

// iterationRange overrides a KDF's accepted iterations; zero keeps its own.
type iterationRange struct {
	lo, hi int
}

// New creates an Engine producing PIN-protected PBKDF2-SHA256 envelopes
// unless options say otherwise.
func New(opts ...Option) (*Engine, error) {
	kdf, _ := crypto.LookupKDF(crypto.PBKDF2SHA256)
	e := &Engine{
		rand:   crypto.Reader,
		kind:   credential.KindPIN,
		length: credential.DefaultPassphraseLength,
		kdf:    kdf,
		bounds: make(map[string]iterationRange),
		log:    logger.Nop(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	if e.iterations == 0 {
		e.iterations = e.kdf.DefaultIterations()
	}
	if err := e.checkIterations(e.kdf, e.iterations); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if e.kind == credential.KindPassphrase {
		if e.length < 1 || e.length > credential.MaxPassphraseLength {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, credential.ErrInvalidLength)
		}
	}
	e.generator = credential.NewGenerator(e.rand)

	return e, nil
}

// KDF returns the identifier used for new envelopes.
func (e *Engine) KDF() string { return e.kdf.ID() }

// Iterations returns the iteration count used for new envelopes.
func (e *Engine) Iterations() int { return e.iterations }

func (e *Engine) iterationBounds(kdf crypto.KDF) (int, int) {
	lo, hi := kdf.MinIterations(), kdf.MaxIterations()
	override := e.bounds[kdf.ID()]
	if override.lo > 0 {
		lo = override.lo
	}
	if override.hi > 0 {
		hi = override.hi
	}
	return lo, hi
}

func (e *Engine) checkIterations(kdf crypto.KDF, iterations int) error {
	lo, hi := e.iterationBounds(kdf)
	if iterations < lo || iterations > hi {
		return fmt.Errorf("%s iteration count %d outside accepted range %d-%d", kdf.ID(), iterations, lo, hi)
	}
	return nil
}

// Encrypt seals plaintext under a freshly generated credential.
func (e *Engine) Encrypt(ctx context.Context, plaintext []byte) (*Sealed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cred, err := e.generator.Generate(e.kind, e.length)
	if err != nil {
		return nil, err
	}

	secret := []byte(cred)
	defer crypto.ClearBytes(secret)

	sealed, err := e.EncryptWithCredential(ctx, plaintext, secret)
	if err != nil {
		return nil, err
	}
	sealed.Credential = cred
	return sealed, nil
}

// EncryptWithCredential seals plaintext under a caller-supplied credential.
// Salt and nonce are still drawn fresh.
func (e *Engine) EncryptWithCredential(ctx context.Context, plaintext, cred []byte) (*Sealed, error) {
	if len(cred) == 0 {
		return nil, ErrEmptyCredential
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	salt, err := crypto.GenerateRandom(e.rand, crypto.SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce, err := crypto.GenerateRandom(e.rand, crypto.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := e.kdf.DeriveKey(cred, salt, e.iterations)
	defer crypto.ClearBytes(key)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ciphertext, err := crypto.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to seal: %w", err)
	}

	env := envelope.New(salt, nonce, ciphertext, e.iterations, e.kdf.ID())
	text, err := env.Marshal()
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("kdf", env.KDF).
		Int("iterations", env.Iterations).
		Int("size", len(plaintext)).
		Str("fingerprint", env.Fingerprint()).
		Msg("envelope sealed")

	return &Sealed{Envelope: env, Text: text}, nil
}

// Decrypt parses envelope text and opens it with cred.
func (e *Engine) Decrypt(ctx context.Context, text string, cred []byte) ([]byte, error) {
	env, err := envelope.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.DecryptEnvelope(ctx, env, cred)
}

// DecryptEnvelope opens a parsed envelope with cred. The KDF and iteration
// count come from the envelope; a missing iter falls back to the KDF default.
func (e *Engine) DecryptEnvelope(ctx context.Context, env *envelope.Envelope, cred []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	log := e.log
	if env.Version != envelope.CurrentVersion {
		log.Warn().Int("version", env.Version).Msg("unrecognized envelope version, attempting anyway")
	}

	kdf, err := crypto.LookupKDF(env.KDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	iterations := env.EffectiveIterations(kdf.DefaultIterations())
	if env.Iterations == 0 {
		log.Warn().Int("iterations", iterations).Msg("envelope has no iteration count, using default")
	}
	if err := e.checkIterations(kdf, iterations); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	key := kdf.DeriveKey(cred, env.Salt, iterations)
	defer crypto.ClearBytes(key)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plaintext, err := crypto.Open(key, env.Nonce, env.Ciphertext)
	if err != nil {
		log.Debug().Str("fingerprint", env.Fingerprint()).Msg("authentication failed")
		return nil, ErrAuthentication
	}

	log.Debug().
		Str("kdf", kdf.ID()).
		Int("iterations", iterations).
		Str("fingerprint", env.Fingerprint()).
		Msg("envelope opened")

	return plaintext, nil
}
