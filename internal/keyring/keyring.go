// Package keyring caches generated credentials in the OS keyring, keyed by
// envelope fingerprint.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "catospher"

// ErrNotFound is returned when no credential is stored for a fingerprint.
var ErrNotFound = keyring.ErrNotFound

// SaveCredential stores a credential in the OS keyring
func SaveCredential(fingerprint string, credential string) error {
	if fingerprint == "" {
		return errors.New("empty fingerprint")
	}
	if err := keyring.Set(serviceName, fingerprint, credential); err != nil {
		return fmt.Errorf("failed to save credential to keyring: %w", err)
	}
	return nil
}

// GetCredential retrieves a credential from the OS keyring
func GetCredential(fingerprint string) (string, error) {
	return keyring.Get(serviceName, fingerprint)
}

// DeleteCredential removes a credential from the OS keyring
func DeleteCredential(fingerprint string) error {
	return keyring.Delete(serviceName, fingerprint)
}

// HasCredential checks if a credential is stored for the fingerprint
func HasCredential(fingerprint string) bool {
	_, err := keyring.Get(serviceName, fingerprint)
	return err == nil
}
