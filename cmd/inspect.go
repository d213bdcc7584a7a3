package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/illarion/catospher/internal/crypto"
	"github.com/illarion/catospher/internal/envelope"
	"github.com/illarion/catospher/internal/keyring"
)

// Inspect describes an envelope without decrypting it
func Inspect(ctx context.Context, inFile string) {
	if err := inspect(ctx, inFile, stdStreams()); err != nil {
		HandleError(err)
	}
}

func inspect(_ context.Context, inFile string, st streams) error {
	text, err := readText(inFile, st.in)
	if err != nil {
		return err
	}
	env, err := envelope.Parse(text)
	if err != nil {
		return err
	}

	kdfID := env.KDF
	kdfNote := ""
	if kdfID == "" {
		kdfID = crypto.PBKDF2SHA256
		kdfNote = " (implied)"
	}

	kdf, kdfErr := crypto.LookupKDF(kdfID)

	var iters string
	switch {
	case env.Iterations > 0:
		iters = fmt.Sprintf("%d", env.Iterations)
	case kdfErr == nil:
		iters = fmt.Sprintf("%d (default, not recorded)", kdf.DefaultIterations())
	default:
		iters = "not recorded"
	}

	fingerprint := env.Fingerprint()
	stored := "not stored"
	if keyring.HasCredential(fingerprint) {
		stored = "stored"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Envelope %s\n", fingerprint)
	fmt.Fprintf(&b, "  Version:     %d", env.Version)
	if env.Version != envelope.CurrentVersion {
		fmt.Fprintf(&b, " (unknown, expected %d)", envelope.CurrentVersion)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  KDF:         %s%s", kdfID, kdfNote)
	if kdfErr != nil {
		b.WriteString(" (unsupported)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Iterations:  %s\n", iters)
	fmt.Fprintf(&b, "  Salt:        %d bytes\n", len(env.Salt))
	fmt.Fprintf(&b, "  Nonce:       %d bytes\n", len(env.Nonce))
	fmt.Fprintf(&b, "  Ciphertext:  %d bytes (plaintext %d bytes)\n", len(env.Ciphertext), len(env.Ciphertext)-crypto.TagSize)
	fmt.Fprintf(&b, "  Keyring:     %s\n", stored)

	_, err = fmt.Fprint(st.out, b.String())
	return err
}
