package envelope

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Envelope {
	return New(
		bytes.Repeat([]byte{0x01}, 16),
		bytes.Repeat([]byte{0x02}, 12),
		bytes.Repeat([]byte{0x03}, 27),
		200000,
		"PBKDF2-SHA256",
	)
}

func TestMarshalParse_RoundTrip(t *testing.T) {
	env := sample()

	text, err := env.Marshal()
	require.NoError(t, err)

	got, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestMarshal_WireFields(t *testing.T) {
	text, err := sample().Marshal()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &fields))

	assert.Equal(t, float64(1), fields["v"])
	assert.Equal(t, "AQEBAQEBAQEBAQEBAQEBAQ==", fields["salt"])
	assert.Equal(t, "AgICAgICAgICAgIC", fields["iv"])
	assert.Equal(t, float64(200000), fields["iter"])
	assert.Equal(t, "PBKDF2-SHA256", fields["kdf"])
	assert.Contains(t, fields, "ct")
	assert.Len(t, fields, 6)
	assert.True(t, strings.HasPrefix(text, "{\n  \"v\": 1,"))
}

func TestMarshal_OmitsOptionalFields(t *testing.T) {
	env := sample()
	env.Iterations = 0
	env.KDF = ""

	text, err := env.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, text, "iter")
	assert.NotContains(t, text, "kdf")
}

func TestParse_LegacyEnvelope(t *testing.T) {
	text := `{"salt":"AQEBAQEBAQEBAQEBAQEBAQ==","iv":"AgICAgICAgICAgIC","ct":"AwMDAwMDAwMDAwMDAwMDAwMDAwMD","v":1}`

	env, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, 0, env.Iterations)
	assert.Equal(t, "", env.KDF)
	assert.Equal(t, 200000, env.EffectiveIterations(200000))
}

func TestParse_UnknownVersionAccepted(t *testing.T) {
	env := sample()
	env.Version = 7
	text, err := env.Marshal()
	require.NoError(t, err)

	got, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Version)

	withoutV := strings.Replace(text, "\"v\": 7,", "", 1)
	got, err = Parse(withoutV)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Version)
}

func TestParse_Malformed(t *testing.T) {
	valid := map[string]any{
		"v":    1,
		"salt": "AQEBAQEBAQEBAQEBAQEBAQ==",
		"iv":   "AgICAgICAgICAgIC",
		"ct":   "AwMDAwMDAwMDAwMDAwMDAwMDAwMD",
		"iter": 200000,
	}
	mutate := func(f func(m map[string]any)) string {
		m := make(map[string]any, len(valid))
		for k, v := range valid {
			m[k] = v
		}
		f(m)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		return string(data)
	}

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"not json", "hello world"},
		{"array", `[1,2,3]`},
		{"truncated", `{"v":1,"salt":`},
		{"missing ct", mutate(func(m map[string]any) { delete(m, "ct") })},
		{"missing salt", mutate(func(m map[string]any) { delete(m, "salt") })},
		{"missing iv", mutate(func(m map[string]any) { delete(m, "iv") })},
		{"empty ct", mutate(func(m map[string]any) { m["ct"] = "" })},
		{"bad base64 salt", mutate(func(m map[string]any) { m["salt"] = "***" })},
		{"bad base64 iv", mutate(func(m map[string]any) { m["iv"] = "not base64!" })},
		{"bad base64 ct", mutate(func(m map[string]any) { m["ct"] = "%%%%" })},
		{"short iv", mutate(func(m map[string]any) { m["iv"] = "AgICAg==" })},
		{"ct shorter than tag", mutate(func(m map[string]any) { m["ct"] = "AwMD" })},
		{"negative iter", mutate(func(m map[string]any) { m["iter"] = -5 })},
		{"fractional iter", mutate(func(m map[string]any) { m["iter"] = 1.5 })},
		{"string version", mutate(func(m map[string]any) { m["v"] = "one" })},
		{"null fields", mutate(func(m map[string]any) { m["salt"] = nil })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Nil(t, env)
		})
	}
}

func TestMarshal_RejectsIncompleteEnvelope(t *testing.T) {
	env := sample()
	env.Ciphertext = nil

	_, err := env.Marshal()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFingerprint(t *testing.T) {
	a := sample()
	b := sample()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)

	b.Ciphertext[0] ^= 0x80
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
