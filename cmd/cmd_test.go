package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/catospher/internal/config"
	"github.com/illarion/catospher/internal/core"
	"github.com/illarion/catospher/internal/envelope"
	"github.com/illarion/catospher/internal/keyring"
	"github.com/illarion/catospher/internal/prompt"
)

type testIO struct {
	out bytes.Buffer
	err bytes.Buffer
}

func (t *testIO) streams(in string) streams {
	return streams{in: strings.NewReader(in), out: &t.out, err: &t.err}
}

// setup replaces config loading, prompts and the clipboard for one test.
func setup(t *testing.T) *config.Config {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(prompt.CredentialEnv, "")

	cfg := config.Defaults()
	cfg.Iterations = 1000
	cfg.PBKDF2MinIterations = 1
	cfg.StateFile = filepath.Join(t.TempDir(), "state.db")
	cfg.LogLevel = "error"

	origLoad, origRead, origConfirm, origCopy := loadConfig, readSecret, confirm, copyToClipboard
	t.Cleanup(func() {
		loadConfig, readSecret, confirm, copyToClipboard = origLoad, origRead, origConfirm, origCopy
	})

	loadConfig = func() (*config.Config, error) {
		c := *cfg
		return &c, nil
	}
	readSecret = func(string) ([]byte, error) {
		t.Fatal("unexpected credential prompt")
		return nil, nil
	}
	confirm = func(string) bool { return true }
	copyToClipboard = func(string) error { return errors.New("no clipboard in tests") }

	return cfg
}

func boolPtr(b bool) *bool { return &b }

var credentialLine = regexp.MustCompile(`Credential: (\S+)`)

// encryptText runs encrypt and returns the envelope text and credential.
func encryptText(t *testing.T, opts EncryptOptions, in string) (string, string) {
	t.Helper()
	var tio testIO
	require.NoError(t, encrypt(context.Background(), opts, tio.streams(in)))

	m := credentialLine.FindStringSubmatch(tio.err.String())
	require.Len(t, m, 2, "stderr: %s", tio.err.String())
	return tio.out.String(), m[1]
}

func TestEncryptDecryptWithEnvCredential(t *testing.T) {
	setup(t)

	text, cred := encryptText(t, EncryptOptions{}, "  Hello World \n")
	assert.Regexp(t, `^\d{8}$`, cred)

	env, err := envelope.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 1000, env.Iterations)

	t.Setenv(prompt.CredentialEnv, cred)
	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "Hello World\n", tio.out.String())
}

func TestEncryptPassphraseFlags(t *testing.T) {
	setup(t)

	_, cred := encryptText(t, EncryptOptions{Text: "secret", Length: 20}, "")
	assert.Len(t, cred, 20)

	_, cred = encryptText(t, EncryptOptions{Text: "secret", Kind: "passphrase"}, "")
	assert.Len(t, cred, 12)
}

func TestEncryptArgon2(t *testing.T) {
	setup(t)

	text, _ := encryptText(t, EncryptOptions{Text: "secret", KDF: "argon2id", Iterations: 1}, "")
	env, err := envelope.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "ARGON2ID", env.KDF)
	assert.Equal(t, 1, env.Iterations)
}

func TestEncryptRejectsInput(t *testing.T) {
	setup(t)
	var tio testIO

	err := encrypt(context.Background(), EncryptOptions{}, tio.streams("   \n"))
	assert.ErrorIs(t, err, errEmptyInput)

	err = encrypt(context.Background(), EncryptOptions{Text: "x", Copy: "plaintext"}, tio.streams(""))
	assert.Error(t, err)

	err = encrypt(context.Background(), EncryptOptions{Text: "x", Kind: "emoji"}, tio.streams(""))
	assert.Error(t, err)

	assert.Empty(t, tio.out.String())
}

func TestEncryptRefusesCredentialOnStdout(t *testing.T) {
	setup(t)

	var tio testIO
	err := encrypt(context.Background(), EncryptOptions{Text: "x", CredentialOut: "-"}, tio.streams(""))
	assert.ErrorIs(t, err, errCredentialStdio)
	assert.Empty(t, tio.out.String())
	assert.Empty(t, tio.err.String())
}

func TestEncryptToFiles(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "note.txt")
	out := filepath.Join(dir, "note.json")
	credOut := filepath.Join(dir, "note.cred")
	require.NoError(t, os.WriteFile(in, []byte("from a file\n"), 0600))

	var tio testIO
	opts := EncryptOptions{InFile: in, OutFile: out, CredentialOut: credOut}
	require.NoError(t, encrypt(context.Background(), opts, tio.streams("")))
	assert.Empty(t, tio.out.String())
	assert.NotContains(t, tio.err.String(), "Credential:")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cred, err := os.ReadFile(credOut)
	require.NoError(t, err)

	t.Setenv(prompt.CredentialEnv, string(cred))
	plainOut := filepath.Join(dir, "plain.txt")
	require.NoError(t, decrypt(context.Background(), DecryptOptions{InFile: out, OutFile: plainOut}, tio.streams("")))

	plain, err := os.ReadFile(plainOut)
	require.NoError(t, err)
	assert.Equal(t, "from a file\n", string(plain))
}

func TestDecryptIgnoresNewEnvelopeSettings(t *testing.T) {
	cfg := setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "portable"}, "")

	// Settings that cannot produce an envelope must not block opening one.
	cfg.PBKDF2MinIterations = 1000
	cfg.Iterations = 50
	var tio testIO
	err := encrypt(context.Background(), EncryptOptions{Text: "x"}, tio.streams(""))
	require.ErrorIs(t, err, core.ErrInvalidOption)

	t.Setenv(prompt.CredentialEnv, cred)
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "portable\n", tio.out.String())
}

func TestDecryptArgon2UnderRaisedPBKDF2Floor(t *testing.T) {
	cfg := setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "argon", KDF: "ARGON2ID", Iterations: 1}, "")

	cfg.PBKDF2MinIterations = 150000
	t.Setenv(prompt.CredentialEnv, cred)

	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "argon\n", tio.out.String())
}

func TestDecryptPrompt(t *testing.T) {
	setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "prompted"}, "")

	var prompts int
	readSecret = func(string) ([]byte, error) {
		prompts++
		return []byte(cred), nil
	}

	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "prompted\n", tio.out.String())
	assert.Equal(t, 1, prompts)
}

func TestDecryptWrongCredential(t *testing.T) {
	setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "hidden"}, "")

	wrong := "00000000"
	if cred == wrong {
		wrong = "00000001"
	}
	t.Setenv(prompt.CredentialEnv, wrong)

	var tio testIO
	err := decrypt(context.Background(), DecryptOptions{}, tio.streams(text))
	assert.ErrorIs(t, err, core.ErrAuthentication)
	assert.Empty(t, tio.out.String())
	assert.Equal(t, "wrong credential or corrupted envelope", describeError(err))
}

func TestDecryptEmptyPrompt(t *testing.T) {
	setup(t)
	text, _ := encryptText(t, EncryptOptions{Text: "x"}, "")
	readSecret = func(string) ([]byte, error) { return nil, nil }

	var tio testIO
	err := decrypt(context.Background(), DecryptOptions{}, tio.streams(text))
	assert.ErrorIs(t, err, errNoCredential)
}

func TestDecryptMalformed(t *testing.T) {
	setup(t)

	var tio testIO
	err := decrypt(context.Background(), DecryptOptions{}, tio.streams(`{"v":1,"salt":"AAAA"}`))
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestKeyringRoundTrip(t *testing.T) {
	setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "kept", Keyring: true}, "")

	env, err := envelope.Parse(text)
	require.NoError(t, err)
	fp := env.Fingerprint()

	stored, err := keyring.GetCredential(fp)
	require.NoError(t, err)
	assert.Equal(t, cred, stored)

	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "kept\n", tio.out.String())

	// -no-keyring forces the prompt
	prompted := false
	readSecret = func(string) ([]byte, error) {
		prompted = true
		return []byte(cred), nil
	}
	require.NoError(t, decrypt(context.Background(), DecryptOptions{NoKeyring: true}, tio.streams(text)))
	assert.True(t, prompted)
}

func TestLogsCarryParametersAndSource(t *testing.T) {
	cfg := setup(t)
	cfg.LogLevel = "debug"

	var enc testIO
	require.NoError(t, encrypt(context.Background(), EncryptOptions{Text: "logged", Keyring: true}, enc.streams("")))
	assert.Contains(t, enc.err.String(), `"kdf":"PBKDF2-SHA256"`)
	assert.Contains(t, enc.err.String(), `"iterations":1000`)
	assert.NotContains(t, enc.err.String(), "logged")

	var dec testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, dec.streams(enc.out.String())))
	assert.Contains(t, dec.err.String(), `"source":"keyring"`)
}

func TestCredentialSourceString(t *testing.T) {
	assert.Equal(t, "environment", SourceEnv.String())
	assert.Equal(t, "keyring", SourceKeyring.String())
	assert.Equal(t, "prompt", SourcePrompt.String())
}

func TestStaleKeyringFallsBackToPrompt(t *testing.T) {
	setup(t)
	text, cred := encryptText(t, EncryptOptions{Text: "rotated"}, "")

	env, err := envelope.Parse(text)
	require.NoError(t, err)
	require.NoError(t, keyring.SaveCredential(env.Fingerprint(), "stale"))

	readSecret = func(string) ([]byte, error) { return []byte(cred), nil }

	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{}, tio.streams(text)))
	assert.Equal(t, "rotated\n", tio.out.String())
}

func TestCopyToClipboard(t *testing.T) {
	setup(t)
	var copied []string
	copyToClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	text, cred := encryptText(t, EncryptOptions{Text: "clip", Copy: "credential"}, "")
	require.Equal(t, []string{cred}, copied)

	t.Setenv(prompt.CredentialEnv, cred)
	var tio testIO
	require.NoError(t, decrypt(context.Background(), DecryptOptions{Copy: true}, tio.streams(text)))
	assert.Equal(t, []string{cred, "clip"}, copied)
}

func TestClipboardFailureIsWarning(t *testing.T) {
	setup(t)

	var tio testIO
	err := encrypt(context.Background(), EncryptOptions{Text: "x", Copy: "envelope"}, tio.streams(""))
	require.NoError(t, err)
	assert.Contains(t, tio.err.String(), "could not copy envelope")
	assert.NotEmpty(t, tio.out.String())
}

func TestInspect(t *testing.T) {
	setup(t)
	text, _ := encryptText(t, EncryptOptions{Text: "Hello World"}, "")
	env, err := envelope.Parse(text)
	require.NoError(t, err)

	var tio testIO
	require.NoError(t, inspect(context.Background(), "", tio.streams(text)))
	out := tio.out.String()
	assert.Contains(t, out, env.Fingerprint())
	assert.Contains(t, out, "PBKDF2-SHA256\n")
	assert.Contains(t, out, "Iterations:  1000\n")
	assert.Contains(t, out, "Ciphertext:  27 bytes (plaintext 11 bytes)")
	assert.Contains(t, out, "Keyring:     not stored")
}

func TestInspectLegacyEnvelope(t *testing.T) {
	setup(t)
	legacy := `{"salt":"AAAAAAAAAAAAAAAAAAAAAA==","iv":"AAAAAAAAAAAAAAAA","ct":"AAAAAAAAAAAAAAAAAAAAAA=="}`

	var tio testIO
	require.NoError(t, inspect(context.Background(), "", tio.streams(legacy)))
	out := tio.out.String()
	assert.Contains(t, out, "Version:     0 (unknown, expected 1)")
	assert.Contains(t, out, "PBKDF2-SHA256 (implied)")
	assert.Contains(t, out, "200000 (default, not recorded)")
}

func TestStateShowAndClear(t *testing.T) {
	cfg := setup(t)
	cfg.PersistState = boolPtr(true)

	_, cred := encryptText(t, EncryptOptions{Text: "remember me"}, "")

	var tio testIO
	require.NoError(t, stateShow(context.Background(), false, tio.streams("")))
	assert.Contains(t, tio.out.String(), "Plaintext: ***********")
	assert.NotContains(t, tio.out.String(), "remember me")
	assert.NotContains(t, tio.out.String(), cred)

	tio.out.Reset()
	require.NoError(t, stateShow(context.Background(), true, tio.streams("")))
	assert.Contains(t, tio.out.String(), "Plaintext: remember me")
	assert.Contains(t, tio.out.String(), "Credential: "+cred)

	tio.out.Reset()
	require.NoError(t, stateClear(context.Background(), true, tio.streams("")))
	assert.Contains(t, tio.out.String(), "State cleared")

	tio.out.Reset()
	require.NoError(t, stateShow(context.Background(), false, tio.streams("")))
	assert.Contains(t, tio.out.String(), "No saved state")
}

func TestStateClearCancelled(t *testing.T) {
	cfg := setup(t)
	cfg.PersistState = boolPtr(true)
	encryptText(t, EncryptOptions{Text: "keep"}, "")
	confirm = func(string) bool { return false }

	var tio testIO
	require.NoError(t, stateClear(context.Background(), false, tio.streams("")))
	assert.Contains(t, tio.out.String(), "Cancelled")

	tio.out.Reset()
	require.NoError(t, stateShow(context.Background(), true, tio.streams("")))
	assert.Contains(t, tio.out.String(), "Plaintext: keep")
}

func TestStateNotPersistedByDefault(t *testing.T) {
	setup(t)
	encryptText(t, EncryptOptions{Text: "ephemeral"}, "")

	var tio testIO
	require.NoError(t, stateShow(context.Background(), true, tio.streams("")))
	assert.Contains(t, tio.out.String(), "No saved state")
	assert.Contains(t, tio.out.String(), "Persistence is off")
}

func TestStateCommandsDoNotCreateStateFile(t *testing.T) {
	cfg := setup(t)
	cfg.StateFile = filepath.Join(t.TempDir(), "nested", "state.db")

	var tio testIO
	require.NoError(t, stateShow(context.Background(), false, tio.streams("")))
	assert.Contains(t, tio.out.String(), "No saved state")

	tio.out.Reset()
	require.NoError(t, stateClear(context.Background(), true, tio.streams("")))
	assert.Contains(t, tio.out.String(), "No saved state")

	assert.NoFileExists(t, cfg.StateFile)
	assert.NoDirExists(t, filepath.Dir(cfg.StateFile))
}

func TestKeyringCommands(t *testing.T) {
	setup(t)
	const fp = "0123456789abcdef"
	var tio testIO

	require.NoError(t, keyringStatus(fp, tio.streams("")))
	assert.Contains(t, tio.out.String(), "not stored")

	require.NoError(t, keyring.SaveCredential(fp, "12345678"))
	tio.out.Reset()
	require.NoError(t, keyringStatus(fp, tio.streams("")))
	assert.Contains(t, tio.out.String(), "stored in keyring")

	tio.out.Reset()
	require.NoError(t, keyringDelete(fp, tio.streams("")))
	assert.Contains(t, tio.out.String(), "removed")
	assert.False(t, keyring.HasCredential(fp))

	tio.out.Reset()
	require.NoError(t, keyringDelete(fp, tio.streams("")))
	assert.Contains(t, tio.out.String(), "No credential stored")

	assert.Error(t, keyringStatus("not-a-fingerprint", tio.streams("")))
	assert.Error(t, keyringDelete("0123456789ABCDEF", tio.streams("")))
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		script, ok := completionScript(shell)
		assert.True(t, ok, shell)
		assert.Contains(t, script, "catospher")
		assert.Contains(t, script, "encrypt")
	}
	_, ok := completionScript("powershell")
	assert.False(t, ok)
}

func TestMaskCredential(t *testing.T) {
	assert.Equal(t, "", maskCredential(""))
	assert.Equal(t, "********", maskCredential("01234567"))
}
