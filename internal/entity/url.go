// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, the
// ForbiddenDomain struct, which represents a host that cannot be shortened,
// and the errors shared between the layers.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found
	// or is no longer active.
	ErrURLNotFound = errors.New("url not found")
	// ErrInvalidURL is returned when a long URL is malformed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrForbiddenDomain is returned when a long URL points to a forbidden domain.
	ErrForbiddenDomain = errors.New("forbidden domain")
	// ErrPasswordMismatch is returned when the presented password does not match the stored one.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrTooManyAttempts is returned when a client exceeded the allowed number of password attempts.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrDomainExists is returned when attempting to forbid a domain that is already forbidden.
	ErrDomainExists = errors.New("domain exists")
	// ErrDomainNotFound is returned when a forbidden domain cannot be found.
	ErrDomainNotFound = errors.New("domain not found")
)

// URL represents a shortened URL.
type URL struct {
	ID        int64     // ID is the store-allocated key the short code is derived from.
	ShortCode string    // ShortCode is the encoded ID used in the short link.
	LongURL   string    // LongURL is the destination the short code resolves to.
	Password  string    // Password is the capability token gating information and deletion.
	URLStats            // URLStats contains click counters.
	IsActive  bool      // IsActive is false once the URL has been deleted.
	IsLazy    bool      // IsLazy is true when the URL was created from the address bar.
	ClientIP  string    // ClientIP is the address of the client that created the URL.
	CreatedAt time.Time // CreatedAt is the timestamp when the URL was created.
}

// URLStats contains click counters of a shortened URL.
type URLStats struct {
	// ShortClicks is the number of redirects served for the short code.
	ShortClicks int64
	// LongClicks is reserved for confirmed arrivals at the destination and is never incremented.
	LongClicks int64
}

// NewURL holds the data required to persist a new URL.
type NewURL struct {
	LongURL  string
	Password string
	ClientIP string
	IsLazy   bool
}

// ForbiddenDomain represents a host that cannot be shortened.
type ForbiddenDomain struct {
	ID        int64
	Domain    string
	CreatedAt time.Time
}

// ValidationError describes why a long URL was rejected.
// Message is safe to show to the user.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
