package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrRandomness is returned when the secure random source cannot supply bytes.
var ErrRandomness = errors.New("secure random source unavailable")

// Reader is the default random source.
var Reader io.Reader = rand.Reader

// GenerateRandom reads n bytes from r. A nil r means Reader.
func GenerateRandom(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}
	return b, nil
}

// RandomUint32s draws n independent uint32 values from r, little endian,
// matching what a Uint32Array filled by getRandomValues yields on common
// hardware.
func RandomUint32s(r io.Reader, n int) ([]uint32, error) {
	buf, err := GenerateRandom(r, 4*n)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(buf)

	values := make([]uint32, n)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return values, nil
}
