package http

import (
	"net/url"
	"strings"
)

// links builds absolute URLs under the public base URL.
type links struct {
	baseURL string
}

func newLinks(baseURL string) links {
	return links{baseURL: strings.TrimRight(baseURL, "/")}
}

func (l links) short(shortCode string) string {
	return l.baseURL + "/" + shortCode
}

func (l links) info(shortCode, password string) string {
	return l.short(shortCode) + "/i/" + url.PathEscape(password)
}

func (l links) delete(shortCode, password string) string {
	return l.short(shortCode) + "/d/" + url.PathEscape(password)
}

func (l links) qr(shortCode string) string {
	return l.short(shortCode) + "/qr"
}
