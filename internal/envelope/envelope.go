package envelope

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/illarion/catospher/internal/crypto"
)

// CurrentVersion is written to the v field of every new envelope.
const CurrentVersion = 1

// ErrFormat marks input that is not a well-formed envelope.
var ErrFormat = errors.New("malformed envelope")

// Envelope holds everything needed to decrypt except the credential.
type Envelope struct {
	Version    int
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
	// Iterations is zero when the envelope did not carry iter.
	Iterations int
	// KDF is empty when the envelope did not carry kdf.
	KDF string
}

// wireEnvelope is the JSON shape. Pointers tell absent fields apart from zero values.
type wireEnvelope struct {
	Version *int    `json:"v"`
	Salt    *string `json:"salt"`
	IV      *string `json:"iv"`
	CT      *string `json:"ct"`
	Iter    *int    `json:"iter,omitempty"`
	KDF     string  `json:"kdf,omitempty"`
}

// New builds a current-version envelope.
func New(salt, nonce, ciphertext []byte, iterations int, kdf string) *Envelope {
	return &Envelope{
		Version:    CurrentVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Iterations: iterations,
		KDF:        kdf,
	}
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants Parse enforces.
func (e *Envelope) Validate() error {
	switch {
	case len(e.Salt) == 0:
		return formatErr("missing salt")
	case len(e.Nonce) == 0:
		return formatErr("missing iv")
	case len(e.Ciphertext) == 0:
		return formatErr("missing ct")
	case len(e.Nonce) != crypto.NonceSize:
		return formatErr("iv must be %d bytes, got %d", crypto.NonceSize, len(e.Nonce))
	case len(e.Ciphertext) < crypto.TagSize:
		return formatErr("ct shorter than authentication tag")
	case e.Iterations < 0:
		return formatErr("negative iter")
	}
	return nil
}

// Marshal serializes the envelope as indented JSON.
func (e *Envelope) Marshal() (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	version := e.Version
	salt := base64.StdEncoding.EncodeToString(e.Salt)
	iv := base64.StdEncoding.EncodeToString(e.Nonce)
	ct := base64.StdEncoding.EncodeToString(e.Ciphertext)
	w := wireEnvelope{
		Version: &version,
		Salt:    &salt,
		IV:      &iv,
		CT:      &ct,
		KDF:     e.KDF,
	}
	if e.Iterations > 0 {
		iter := e.Iterations
		w.Iter = &iter
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return string(data), nil
}

func decodeField(name string, value *string) ([]byte, error) {
	if value == nil || *value == "" {
		return nil, formatErr("missing %s", name)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*value))
	if err != nil {
		return nil, formatErr("%s is not valid base64", name)
	}
	return b, nil
}

// Parse deserializes envelope text. Any structural problem is reported as
// ErrFormat. Unknown versions are accepted; the caller decides what to do
// with them.
func Parse(text string) (*Envelope, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, formatErr("not a JSON object")
	}

	var w wireEnvelope
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, formatErr("invalid JSON: %v", err)
	}

	env := &Envelope{KDF: w.KDF}
	if w.Version != nil {
		env.Version = *w.Version
	}
	if w.Iter != nil {
		env.Iterations = *w.Iter
	}

	var err error
	if env.Salt, err = decodeField("salt", w.Salt); err != nil {
		return nil, err
	}
	if env.Nonce, err = decodeField("iv", w.IV); err != nil {
		return nil, err
	}
	if env.Ciphertext, err = decodeField("ct", w.CT); err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// EffectiveIterations returns the iteration count to derive with,
// falling back to def when the envelope carried none.
func (e *Envelope) EffectiveIterations(def int) int {
	if e.Iterations == 0 {
		return def
	}
	return e.Iterations
}

// Fingerprint identifies an envelope without revealing anything about the
// plaintext: the first 16 hex characters of SHA-256(salt || iv || ct).
func (e *Envelope) Fingerprint() string {
	h := sha256.New()
	h.Write(e.Salt)
	h.Write(e.Nonce)
	h.Write(e.Ciphertext)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
