// Package crypto provides the cryptographic primitives behind catospher
// envelopes.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the credential
//   - 12-byte random nonce per envelope
//   - 16-byte authentication tag appended to the ciphertext
//   - no additional authenticated data
//
// Key derivation is selected by identifier:
//   - PBKDF2-SHA256: 200,000 iterations by default
//   - ARGON2ID: time cost 3 by default, 64 MiB, 4 lanes
//
// Memory safety:
//   - Use ClearBytes() to zero keys and credentials after use
package crypto
