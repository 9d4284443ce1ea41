package usecase

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/vadimbarashkov/lzy/internal/entity"
)

const maxURLLength = 2048

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

type forbiddenDomainRepository interface {
	ContainsAny(ctx context.Context, hosts ...string) (bool, error)
}

// URLValidator rejects malformed long URLs and URLs pointing to forbidden domains.
type URLValidator struct {
	domainRepo forbiddenDomainRepository
}

func NewURLValidator(domainRepo forbiddenDomainRepository) *URLValidator {
	return &URLValidator{domainRepo: domainRepo}
}

// Validate returns a *entity.ValidationError when rawURL cannot be shortened.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) error {
	const op = "usecase.URLValidator.Validate"

	host, err := parseHost(rawURL)
	if err != nil {
		return err
	}

	forbidden, err := v.domainRepo.ContainsAny(ctx, hostVariants(host)...)
	if err != nil {
		return fmt.Errorf("%s: failed to check forbidden domains: %w", op, err)
	}

	if forbidden {
		return &entity.ValidationError{
			Message: fmt.Sprintf("Domain %s is forbidden.", host),
			Err:     entity.ErrForbiddenDomain,
		}
	}

	return nil
}

// NormalizeURL trims rawURL and prepends http:// when no scheme is given.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || schemePrefix.MatchString(rawURL) {
		return rawURL
	}
	return "http://" + rawURL
}

func parseHost(rawURL string) (string, error) {
	invalid := func(msg string) error {
		return &entity.ValidationError{Message: msg, Err: entity.ErrInvalidURL}
	}

	if rawURL == "" {
		return "", invalid("Enter a URL.")
	}
	if len(rawURL) > maxURLLength {
		return "", invalid(fmt.Sprintf("URL is too long (max %d characters).", maxURLLength))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", invalid("Enter a valid URL.")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", invalid("URL must start with http:// or https://.")
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" || strings.ContainsAny(host, " \t") {
		return "", invalid("Enter a valid URL.")
	}
	if ip := net.ParseIP(host); ip == nil && !strings.Contains(host, ".") && host != "localhost" {
		return "", invalid("Enter a valid URL.")
	}

	return host, nil
}

// hostVariants returns host together with its bare or www.-prefixed counterpart.
func hostVariants(host string) []string {
	if bare, ok := strings.CutPrefix(host, "www."); ok {
		return []string{bare, host}
	}
	return []string{host, "www." + host}
}
