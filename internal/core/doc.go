// Package core provides the catospher encrypt and decrypt pipelines.
//
// Encrypt: generate credential, draw salt and nonce, derive key, seal,
// serialize the envelope. Decrypt: parse the envelope, derive the key from
// the supplied credential with the envelope's KDF parameters, open.
//
// Every error returned by an Engine matches exactly one of:
//   - ErrFormat: the envelope is malformed or asks for unsupported parameters
//   - ErrAuthentication: wrong credential, or tampered salt, iv or ct
//   - ErrRandomness: the secure random source failed
//
// or the context error when the operation was cancelled. Nothing is
// returned alongside an error.
package core
