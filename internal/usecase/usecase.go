// Package usecase implements the URL shortener business logic: creating short
// links, resolving them, and the password-gated information and delete actions.
package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/lzy/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultPasswordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultPasswordLength   = 16
)

type urlRepository interface {
	Save(ctx context.Context, u entity.NewURL, encode func(id int64) (string, error)) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndCountClick(ctx context.Context, shortCode string) (*entity.URL, error)
	Deactivate(ctx context.Context, shortCode string) error
}

type shortCodeEncoder interface {
	Encode(id int64) (string, error)
}

type urlValidator interface {
	Validate(ctx context.Context, rawURL string) error
}

type attemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ShortenInput describes a request to shorten a URL.
type ShortenInput struct {
	LongURL  string
	ClientIP string
	// Lazy is set when the URL was typed after the host in the address bar.
	Lazy bool
}

type URLUseCase struct {
	urlRepo          urlRepository
	encoder          shortCodeEncoder
	validator        urlValidator
	limiter          attemptLimiter
	passwordAlphabet string
	passwordLength   int
}

type Option func(*URLUseCase)

func WithPassword(alphabet string, length int) Option {
	return func(uc *URLUseCase) {
		if alphabet != "" {
			uc.passwordAlphabet = alphabet
		}
		if length > 0 {
			uc.passwordLength = length
		}
	}
}

func NewURLUseCase(
	urlRepo urlRepository,
	encoder shortCodeEncoder,
	validator urlValidator,
	limiter attemptLimiter,
	opts ...Option,
) *URLUseCase {
	uc := &URLUseCase{
		urlRepo:          urlRepo,
		encoder:          encoder,
		validator:        validator,
		limiter:          limiter,
		passwordAlphabet: DefaultPasswordAlphabet,
		passwordLength:   DefaultPasswordLength,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL validates the long URL and persists it under a short code derived
// from the key the store allocates for it.
func (uc *URLUseCase) ShortenURL(ctx context.Context, in ShortenInput) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	longURL := NormalizeURL(in.LongURL)

	if err := uc.validator.Validate(ctx, longURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	password, err := gonanoid.Generate(uc.passwordAlphabet, uc.passwordLength)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate password: %w", op, err)
	}

	url, err := uc.urlRepo.Save(ctx, entity.NewURL{
		LongURL:  longURL,
		Password: password,
		ClientIP: in.ClientIP,
		IsLazy:   in.Lazy,
	}, uc.encoder.Encode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode returns the active URL for shortCode and counts the click.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveAndCountClick(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLInfo returns the URL for shortCode when password matches.
// An unknown short code is reported as entity.ErrPasswordMismatch.
func (uc *URLUseCase) GetURLInfo(ctx context.Context, shortCode, password, clientIP string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLInfo"

	url, err := uc.authorize(ctx, shortCode, password, clientIP)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return url, nil
}

// DeactivateURL marks the URL for shortCode as deleted when password matches.
func (uc *URLUseCase) DeactivateURL(ctx context.Context, shortCode, password, clientIP string) error {
	const op = "usecase.URLUseCase.DeactivateURL"

	if _, err := uc.authorize(ctx, shortCode, password, clientIP); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := uc.urlRepo.Deactivate(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

func (uc *URLUseCase) authorize(ctx context.Context, shortCode, password, clientIP string) (*entity.URL, error) {
	allowed, err := uc.limiter.Allow(ctx, "ip:"+clientIP)
	if err != nil {
		return nil, fmt.Errorf("failed to check attempts: %w", err)
	}
	if !allowed {
		return nil, entity.ErrTooManyAttempts
	}

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return nil, entity.ErrPasswordMismatch
		}
		return nil, fmt.Errorf("failed to retrieve url: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(url.Password), []byte(password)) != 1 {
		return nil, entity.ErrPasswordMismatch
	}

	return url, nil
}
