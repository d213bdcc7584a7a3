// Package storage provides the BBolt snapshot store for catospher.
//
// Database structure uses two buckets:
//   - config: format version and timestamps
//   - state: the form snapshot, stored as JSON under a single fixed key
//
// The store holds whatever the user last typed or produced, including
// plaintext, so the file is created with owner-only permissions and
// persistence is opt-in. The encryption core never touches it.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
