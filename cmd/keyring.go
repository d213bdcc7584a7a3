package cmd

import (
	"fmt"
	"regexp"

	"github.com/illarion/catospher/internal/keyring"
)

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func checkFingerprint(fingerprint string) error {
	if !fingerprintPattern.MatchString(fingerprint) {
		return fmt.Errorf("invalid fingerprint %q (expected 16 hex characters, see 'catospher inspect')", fingerprint)
	}
	return nil
}

// KeyringDelete removes a credential from the OS keyring
func KeyringDelete(fingerprint string) {
	if err := keyringDelete(fingerprint, stdStreams()); err != nil {
		HandleError(err)
	}
}

// KeyringStatus checks if a credential is stored in the keyring
func KeyringStatus(fingerprint string) {
	if err := keyringStatus(fingerprint, stdStreams()); err != nil {
		HandleError(err)
	}
}

func keyringDelete(fingerprint string, st streams) error {
	if err := checkFingerprint(fingerprint); err != nil {
		return err
	}

	if err := keyring.DeleteCredential(fingerprint); err != nil {
		fmt.Fprintln(st.out, "No credential stored in keyring")
		return nil
	}

	fmt.Fprintln(st.out, "Credential removed from keyring")
	return nil
}

func keyringStatus(fingerprint string, st streams) error {
	if err := checkFingerprint(fingerprint); err != nil {
		return err
	}

	if keyring.HasCredential(fingerprint) {
		fmt.Fprintln(st.out, "Credential: stored in keyring")
	} else {
		fmt.Fprintln(st.out, "Credential: not stored")
	}
	return nil
}
