package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/illarion/catospher/internal/storage"
)

// StateShow prints the last persisted session snapshot
func StateShow(ctx context.Context, reveal bool) {
	if err := stateShow(ctx, reveal, stdStreams()); err != nil {
		HandleError(err)
	}
}

// StateClear wipes the persisted snapshot and compacts the store
func StateClear(ctx context.Context, force bool) {
	if err := stateClear(ctx, force, stdStreams()); err != nil {
		HandleError(err)
	}
}

func stateShow(_ context.Context, reveal bool, st streams) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	noState := func() error {
		fmt.Fprintln(st.out, "No saved state")
		if !cfg.Persist() {
			fmt.Fprintln(st.out, "Persistence is off (set CATOSPHER_PERSIST_STATE=true to enable)")
		}
		return nil
	}

	exists, err := stateFileExists(cfg.StateFile)
	if err != nil {
		return err
	}
	if !exists {
		return noState()
	}

	db, err := storage.Open(cfg.StateFile)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.LoadSnapshot()
	if err != nil {
		return err
	}
	if snap.IsEmpty() {
		return noState()
	}

	secret := func(s string) string {
		if reveal {
			return s
		}
		return maskCredential(s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "State: %s\n", db.Path())
	if !snap.Updated.IsZero() {
		fmt.Fprintf(&b, "Updated: %s\n", snap.Updated.Local().Format(time.RFC3339))
	}
	writeField(&b, "Plaintext", secret(snap.Plaintext))
	writeField(&b, "Credential", secret(snap.Credential))
	writeField(&b, "Envelope", snap.EnvelopeOutput)
	writeField(&b, "Envelope input", snap.EnvelopeInput)
	writeField(&b, "Credential input", secret(snap.CredentialInput))
	writeField(&b, "Decrypted", secret(snap.Decrypted))

	_, err = fmt.Fprint(st.out, b.String())
	return err
}

// stateFileExists checks for the state file without creating it.
func stateFileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check state file: %w", err)
	}
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	if strings.Contains(value, "\n") {
		fmt.Fprintf(b, "%s:\n  %s\n", name, strings.ReplaceAll(value, "\n", "\n  "))
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, value)
}

func stateClear(_ context.Context, force bool, st streams) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	exists, err := stateFileExists(cfg.StateFile)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(st.out, "No saved state")
		return nil
	}

	db, err := storage.Open(cfg.StateFile)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.LoadSnapshot()
	if err != nil {
		return err
	}
	if snap.IsEmpty() {
		fmt.Fprintln(st.out, "No saved state")
		return nil
	}

	if !force && !confirm("Clear saved state?") {
		fmt.Fprintln(st.out, "Cancelled")
		return nil
	}

	if err := db.ClearSnapshot(); err != nil {
		return err
	}
	if err := db.Compact(); err != nil {
		return err
	}

	fmt.Fprintln(st.out, "State cleared")
	return nil
}
