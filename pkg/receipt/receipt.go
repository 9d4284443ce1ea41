// Package receipt issues and verifies short-lived tokens that carry a small
// JSON payload through a redirect without server-side session state.
// Tokens are authenticated and encrypted, so the payload is not readable from the URL.
package receipt

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
)

// tokenName binds tokens to this use. A value encoded under another name does not verify.
const tokenName = "receipt"

var (
	// ErrMalformed is returned when a token cannot be decoded.
	ErrMalformed = errors.New("malformed receipt")
	// ErrBadSignature is returned when a token's MAC does not match its payload.
	ErrBadSignature = errors.New("bad receipt signature")
	// ErrExpired is returned when a token is past its expiry.
	ErrExpired = errors.New("receipt expired")
)

type sealed struct {
	Data      any   `json:"d"`
	ExpiresAt int64 `json:"exp"`
}

type opened struct {
	Data      json.RawMessage `json:"d"`
	ExpiresAt int64           `json:"exp"`
}

type Signer struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
	now   func() time.Time
}

// NewSigner derives the MAC and AES-256 keys from secret.
func NewSigner(secret string, ttl time.Duration) *Signer {
	hashKey := sha256.Sum256([]byte("lzy-receipt-hash:" + secret))
	blockKey := sha256.Sum256([]byte("lzy-receipt-block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:]).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(0)

	return &Signer{
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Sign encodes v and returns a token valid for the signer's ttl.
func (s *Signer) Sign(v any) (string, error) {
	const op = "receipt.Signer.Sign"

	token, err := s.codec.Encode(tokenName, sealed{
		Data:      v,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}

	return token, nil
}

// Verify checks the token and decodes its payload into v.
func (s *Signer) Verify(token string, v any) error {
	const op = "receipt.Signer.Verify"

	var env opened
	if err := s.codec.Decode(tokenName, token, &env); err != nil {
		if errors.Is(err, securecookie.ErrMacInvalid) {
			return fmt.Errorf("%s: %w", op, ErrBadSignature)
		}
		return fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}

	if s.now().Unix() > env.ExpiresAt {
		return fmt.Errorf("%s: %w", op, ErrExpired)
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}

	return nil
}
