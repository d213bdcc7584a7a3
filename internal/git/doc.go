// Package git warns when catospher writes a secret into a git work tree.
//
// Checks performed on decrypted plaintext and credential files:
//   - Whether the file is tracked by git (should not be)
//   - Whether the file is covered by .gitignore (should be)
//
// These checks help users avoid accidentally committing decrypted secrets.
package git
