package storage

import (
	"time"
)

// Snapshot mirrors the fields of an in-progress encrypt/decrypt session.
type Snapshot struct {
	Plaintext       string    `json:"plaintext,omitempty"`
	EnvelopeInput   string    `json:"envelopeInput,omitempty"`
	CredentialInput string    `json:"credentialInput,omitempty"`
	Decrypted       string    `json:"decrypted,omitempty"`
	EnvelopeOutput  string    `json:"envelopeOutput,omitempty"`
	Credential      string    `json:"credential,omitempty"`
	Updated         time.Time `json:"updated"`
}

// IsEmpty reports whether no field holds a value.
func (s *Snapshot) IsEmpty() bool {
	return s.Plaintext == "" &&
		s.EnvelopeInput == "" &&
		s.CredentialInput == "" &&
		s.Decrypted == "" &&
		s.EnvelopeOutput == "" &&
		s.Credential == ""
}

// Merge copies every non-empty field of other into s.
func (s *Snapshot) Merge(other *Snapshot) {
	if other.Plaintext != "" {
		s.Plaintext = other.Plaintext
	}
	if other.EnvelopeInput != "" {
		s.EnvelopeInput = other.EnvelopeInput
	}
	if other.CredentialInput != "" {
		s.CredentialInput = other.CredentialInput
	}
	if other.Decrypted != "" {
		s.Decrypted = other.Decrypted
	}
	if other.EnvelopeOutput != "" {
		s.EnvelopeOutput = other.EnvelopeOutput
	}
	if other.Credential != "" {
		s.Credential = other.Credential
	}
}
