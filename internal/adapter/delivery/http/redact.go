package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const redacted = "REDACTED"

type originalURLKey struct{}

type originalURL struct {
	url        *url.URL
	requestURI string
}

// hideSecrets replaces capability passwords and receipts in the request URL,
// so the access log and panic log never see them. restoreSecrets must run
// before routing.
func hideSecrets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, ok := redactPath(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), originalURLKey{}, originalURL{url: r.URL, requestURI: r.RequestURI})
		r = r.WithContext(ctx)

		u := *r.URL
		u.Path = path
		u.RawPath = ""
		r.URL = &u
		r.RequestURI = u.RequestURI()

		next.ServeHTTP(w, r)
	})
}

func restoreSecrets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orig, ok := r.Context().Value(originalURLKey{}).(originalURL)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(r.Context())
		r.URL = orig.url
		r.RequestURI = orig.requestURI

		next.ServeHTTP(w, r)
	})
}

// redactPath hides the secret segment of /s/{receipt}, /{code}/i/{password} and /{code}/d/{password}.
func redactPath(path string) (string, bool) {
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 3 && parts[1] == "s" && parts[2] != "":
		parts[2] = redacted
	case len(parts) == 4 && isShortCode(parts[1]) && (parts[2] == "i" || parts[2] == "d") && parts[3] != "":
		parts[3] = redacted
	default:
		return path, false
	}

	return strings.Join(parts, "/"), true
}

func isShortCode(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
