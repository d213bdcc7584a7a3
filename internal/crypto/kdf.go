package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	PBKDF2SHA256 = "PBKDF2-SHA256"
	Argon2ID     = "ARGON2ID"

	DefaultIters = 200000 // Default PBKDF2 iterations, also the fallback for envelopes without iter

	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

var ErrUnknownKDF = errors.New("unknown key derivation function")

// KDF stretches a credential and salt into a KeySize key.
type KDF interface {
	// ID is the identifier written to the envelope kdf field.
	ID() string
	// DeriveKey is deterministic in (secret, salt, iterations).
	DeriveKey(secret, salt []byte, iterations int) []byte
	DefaultIterations() int
	// MinIterations and MaxIterations bound what an envelope may request.
	MinIterations() int
	MaxIterations() int
}

type pbkdf2KDF struct{}

func (pbkdf2KDF) ID() string             { return PBKDF2SHA256 }
func (pbkdf2KDF) DefaultIterations() int { return DefaultIters }
func (pbkdf2KDF) MinIterations() int     { return 100000 }
func (pbkdf2KDF) MaxIterations() int     { return 10000000 }

func (pbkdf2KDF) DeriveKey(secret, salt []byte, iterations int) []byte {
	return pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New)
}

// argon2KDF reads the iteration count as the Argon2 time cost.
type argon2KDF struct{}

func (argon2KDF) ID() string             { return Argon2ID }
func (argon2KDF) DefaultIterations() int { return 3 }
func (argon2KDF) MinIterations() int     { return 1 }
func (argon2KDF) MaxIterations() int     { return 64 }

func (argon2KDF) DeriveKey(secret, salt []byte, iterations int) []byte {
	return argon2.IDKey(secret, salt, uint32(iterations), argonMemory, argonThreads, KeySize)
}

// LookupKDF resolves a KDF identifier. An empty id selects PBKDF2-SHA256,
// which is what envelopes without a kdf field were produced with.
func LookupKDF(id string) (KDF, error) {
	switch strings.ToUpper(strings.TrimSpace(id)) {
	case "", PBKDF2SHA256:
		return pbkdf2KDF{}, nil
	case Argon2ID:
		return argon2KDF{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKDF, id)
	}
}
