// Package credential generates the one-time credentials that protect
// catospher envelopes.
//
// Random values are reduced with a plain modulo. 10^8 does not divide 2^32
// and 69 does not divide 2^32 either, so low values are very slightly more
// likely than high ones. The skew is below 2^-25 per draw and is kept so
// generated credentials match other implementations of the format.
package credential

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/illarion/catospher/internal/crypto"
)

// Kind selects the credential variant.
type Kind int

const (
	KindPIN Kind = iota
	KindPassphrase
)

const (
	PINLength               = 8
	DefaultPassphraseLength = 12
	MaxPassphraseLength     = 1024

	pinModulus = 100000000

	// Alphabet is the passphrase alphabet: 26 upper, 26 lower, 10 digits, 7 symbols.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@#!?$%&"
)

var (
	ErrInvalidLength = errors.New("invalid passphrase length")
	ErrUnknownKind   = errors.New("unknown credential kind")
)

func (k Kind) String() string {
	switch k {
	case KindPIN:
		return "pin"
	case KindPassphrase:
		return "passphrase"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts "pin" or "passphrase" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pin", "":
		return KindPIN, nil
	case "passphrase", "password":
		return KindPassphrase, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Generator draws credentials from a secure random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a Generator reading from r, or crypto.Reader when r is nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = crypto.Reader
	}
	return &Generator{rand: r}
}

// Generate returns a fresh credential. length is ignored for PINs.
func (g *Generator) Generate(kind Kind, length int) (string, error) {
	switch kind {
	case KindPIN:
		return g.PIN()
	case KindPassphrase:
		return g.Passphrase(length)
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// PIN returns exactly eight ASCII digits.
func (g *Generator) PIN() (string, error) {
	values, err := crypto.RandomUint32s(g.rand, 1)
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%0*d", PINLength, values[0]%pinModulus), nil
}

// Passphrase returns length characters drawn from Alphabet.
func (g *Generator) Passphrase(length int) (string, error) {
	if length < 1 || length > MaxPassphraseLength {
		return "", fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidLength, length, MaxPassphraseLength)
	}

	values, err := crypto.RandomUint32s(g.rand, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}

	var sb strings.Builder
	sb.Grow(length)
	for _, v := range values {
		sb.WriteByte(Alphabet[v%uint32(len(Alphabet))])
	}
	return sb.String(), nil
}
