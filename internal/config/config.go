// Package config loads catospher settings.
//
// Values are merged in this order, earlier sources winning:
//   - CATOSPHER_* environment variables
//   - the JSON file named by CATOSPHER_CONFIG
//   - built-in defaults
//
// Command flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/catospher/internal/credential"
	"github.com/illarion/catospher/internal/crypto"
)

const EnvPrefix = "CATOSPHER_"

// Config holds every tunable the CLI exposes.
type Config struct {
	// KDF is the key derivation identifier for new envelopes.
	KDF string `env:"KDF" json:"kdf"`
	// Iterations for new envelopes; zero means the KDF default.
	Iterations int `env:"ITERATIONS" json:"iterations"`
	// Per-KDF overrides of the iter range accepted on decrypt; zero keeps
	// the KDF's own bound.
	PBKDF2MinIterations int `env:"PBKDF2_MIN_ITERATIONS" json:"pbkdf2_min_iterations"`
	PBKDF2MaxIterations int `env:"PBKDF2_MAX_ITERATIONS" json:"pbkdf2_max_iterations"`
	Argon2MinIterations int `env:"ARGON2_MIN_ITERATIONS" json:"argon2_min_iterations"`
	Argon2MaxIterations int `env:"ARGON2_MAX_ITERATIONS" json:"argon2_max_iterations"`

	CredentialKind   string `env:"CREDENTIAL_KIND" json:"credential_kind"`
	PassphraseLength int    `env:"PASSPHRASE_LENGTH" json:"passphrase_length"`

	StateFile    string `env:"STATE_FILE" json:"state_file"`
	// Pointers so an explicit false from a higher source wins over true.
	PersistState *bool `env:"PERSIST_STATE" json:"persist_state"`
	UseKeyring   *bool `env:"USE_KEYRING" json:"use_keyring"`

	LogLevel  string `env:"LOG_LEVEL" json:"log_level"`
	LogFormat string `env:"LOG_FORMAT" json:"log_format"`

	// JSONFilePath is read from CATOSPHER_CONFIG only.
	JSONFilePath string `env:"CONFIG" json:"-"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		KDF:              crypto.PBKDF2SHA256,
		CredentialKind:   credential.KindPIN.String(),
		PassphraseLength: credential.DefaultPassphraseLength,
		StateFile:        defaultStateFile(),
		LogLevel:         "warn",
	}
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".catospher.db"
	}
	return filepath.Join(dir, "catospher", "state.db")
}

// Load builds the configuration from the environment, the optional JSON
// file, and defaults.
func Load() (*Config, error) {
	return newConfigBuilder().withEnv().withJSON().withDefaults().build()
}

// Persist reports whether sessions are saved to StateFile.
func (c *Config) Persist() bool {
	return c.PersistState != nil && *c.PersistState
}

// KeyringEnabled reports whether every generated credential goes to the keyring.
func (c *Config) KeyringEnabled() bool {
	return c.UseKeyring != nil && *c.UseKeyring
}

// Kind parses CredentialKind.
func (c *Config) Kind() (credential.Kind, error) {
	return credential.ParseKind(c.CredentialKind)
}

func (c *Config) validate() error {
	var errs []error

	if _, err := crypto.LookupKDF(c.KDF); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Kind(); err != nil {
		errs = append(errs, err)
	}
	if c.Iterations < 0 {
		errs = append(errs, fmt.Errorf("iterations must not be negative"))
	}
	errs = append(errs,
		checkBounds("pbkdf2", c.PBKDF2MinIterations, c.PBKDF2MaxIterations),
		checkBounds("argon2", c.Argon2MinIterations, c.Argon2MaxIterations),
	)
	if c.PassphraseLength < 1 || c.PassphraseLength > credential.MaxPassphraseLength {
		errs = append(errs, fmt.Errorf("passphrase_length must be 1-%d", credential.MaxPassphraseLength))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func checkBounds(name string, lo, hi int) error {
	if lo < 0 || hi < 0 {
		return fmt.Errorf("%s iteration bounds must not be negative", name)
	}
	if hi > 0 && lo > hi {
		return fmt.Errorf("%s_min_iterations %d exceeds %s_max_iterations %d", name, lo, name, hi)
	}
	return nil
}
