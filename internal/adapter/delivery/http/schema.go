package http

import (
	"time"

	"github.com/vadimbarashkov/lzy/internal/entity"
)

// shortenForm is the form posted from the index page.
type shortenForm struct {
	LongURL string `form:"long_url" validate:"required,max=2048"`
}

// shortenRequest represents the structure for a request to shorten a URL.
type shortenRequest struct {
	LongURL string `json:"long_url" validate:"required,max=2048"`
}

// urlResponse is returned once, on creation. It is the only response carrying the password.
type urlResponse struct {
	ShortCode string    `json:"short_url_hash"`
	ShortURL  string    `json:"short_url"`
	LongURL   string    `json:"long_url"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

func toURLResponse(url *entity.URL, l links) urlResponse {
	return urlResponse{
		ShortCode: url.ShortCode,
		ShortURL:  l.short(url.ShortCode),
		LongURL:   url.LongURL,
		Password:  url.Password,
		CreatedAt: url.CreatedAt,
	}
}

type urlInfoResponse struct {
	ShortCode   string    `json:"short_url_hash"`
	ShortURL    string    `json:"short_url"`
	LongURL     string    `json:"long_url"`
	ShortClicks int64     `json:"clicks_on_short_url"`
	LongClicks  int64     `json:"clicks_on_long_url"`
	IsLazy      bool      `json:"is_lazy"`
	CreatedAt   time.Time `json:"created_at"`
}

func toURLInfoResponse(url *entity.URL, l links) urlInfoResponse {
	return urlInfoResponse{
		ShortCode:   url.ShortCode,
		ShortURL:    l.short(url.ShortCode),
		LongURL:     url.LongURL,
		ShortClicks: url.ShortClicks,
		LongClicks:  url.LongClicks,
		IsLazy:      url.IsLazy,
		CreatedAt:   url.CreatedAt,
	}
}

// receiptPayload is what the success page needs, carried in a signed token
// through the redirect that follows creation.
type receiptPayload struct {
	ShortCode string `json:"short_url_hash"`
	LongURL   string `json:"long_url"`
	Password  string `json:"password"`
}

// Page data.

type indexPage struct {
	LongURL  string
	Error    string
	HelpText string
}

type createErrorPage struct {
	Error string
}

type successPage struct {
	ShortURL  string
	LongURL   string
	InfoURL   string
	DeleteURL string
	QRURL     string
}

type infoPage struct {
	ShortURL    string
	LongURL     string
	ShortClicks int64
	LongClicks  int64
	CreatedAt   time.Time
}

type deletedPage struct {
	ShortURL string
}

// messageForTag returns the index page message for a failed form validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "Enter a URL."
	case "max":
		return "The URL is too long."
	default:
		return "Enter a valid URL."
	}
}
