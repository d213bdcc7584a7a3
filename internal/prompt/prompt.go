// Package prompt reads credentials and confirmations from the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// CredentialEnv overrides interactive credential entry.
const CredentialEnv = "CATOSPHER_CREDENTIAL"

// CredentialFromEnv reads the credential from CATOSPHER_CREDENTIAL.
// Returns nil when unset.
func CredentialFromEnv() []byte {
	credential := strings.TrimSpace(os.Getenv(CredentialEnv))
	if credential == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(credential))
	copy(result, credential)
	return result
}

// ReadSecret prints prompt to stderr and reads a line without echo. When
// stdin is not a terminal it reads one line from it instead.
func ReadSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr) // New line after input
		if err != nil {
			return nil, fmt.Errorf("failed to read credential: %w", err)
		}
		return trimBytes(secret), nil
	}

	return readLine(os.Stdin)
}

func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	return []byte(strings.TrimSpace(line)), nil
}

func trimBytes(b []byte) []byte {
	trimmed := strings.TrimSpace(string(b))
	for i := range b {
		b[i] = 0
	}
	return []byte(trimmed)
}

// Confirm asks a Y/n question. Anything but an explicit no is yes.
func Confirm(prompt string) bool {
	return confirm(os.Stdin, prompt)
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [Y/n]: ", prompt)

	response, _ := bufio.NewReader(r).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))

	// Default is Yes, so only cancel on explicit 'n' or 'no'
	return response != "n" && response != "no"
}
