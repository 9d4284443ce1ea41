// Package hashid encodes store-allocated integer keys into short alphanumeric identifiers.
package hashid

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ErrNonPositiveKey is returned when encoding a key that is zero or negative.
var ErrNonPositiveKey = errors.New("key must be positive")

const (
	defaultMinLength = 3
	// 62 alphanumeric characters, safe for use in a URL path.
	defaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"
)

type Option func(*hashids.HashIDData)

func WithSalt(salt string) Option {
	return func(d *hashids.HashIDData) {
		d.Salt = salt
	}
}

func WithMinLength(n int) Option {
	return func(d *hashids.HashIDData) {
		d.MinLength = n
	}
}

// Encoder is a deterministic, reversible mapping between positive keys and short identifiers.
type Encoder struct {
	h *hashids.HashID
}

func New(opts ...Option) (*Encoder, error) {
	const op = "hashid.New"

	data := hashids.NewData()
	data.Alphabet = defaultAlphabet
	data.MinLength = defaultMinLength

	for _, opt := range opts {
		opt(data)
	}

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to initialize hashids: %w", op, err)
	}

	return &Encoder{h: h}, nil
}

// Encode returns the identifier for key.
func (e *Encoder) Encode(key int64) (string, error) {
	const op = "hashid.Encoder.Encode"

	if key <= 0 {
		return "", fmt.Errorf("%s: %d: %w", op, key, ErrNonPositiveKey)
	}

	code, err := e.h.EncodeInt64([]int64{key})
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode key: %w", op, err)
	}

	return code, nil
}

// Decode returns the key encoded in code.
func (e *Encoder) Decode(code string) (int64, error) {
	const op = "hashid.Encoder.Decode"

	keys, err := e.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to decode %q: %w", op, code, err)
	}
	if len(keys) != 1 {
		return 0, fmt.Errorf("%s: %q encodes %d keys", op, code, len(keys))
	}

	return keys[0], nil
}
