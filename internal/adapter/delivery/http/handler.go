// Package http provides the HTTP delivery layer for the URL shortener: the HTML
// pages served to browsers and the JSON API under /api/v1.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/lzy/internal/entity"
	"github.com/vadimbarashkov/lzy/internal/usecase"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, in usecase.ShortenInput) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	GetURLInfo(ctx context.Context, shortCode, password, clientIP string) (*entity.URL, error)
	DeactivateURL(ctx context.Context, shortCode, password, clientIP string) error
}

type receiptSigner interface {
	Sign(v any) (string, error)
	Verify(token string, v any) error
}

type pageRenderer interface {
	Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) error
}

const (
	pageIndex           = "index.html"
	pageCreateError     = "create_error.html"
	pageSuccess         = "success.html"
	pageInfo            = "info.html"
	pageDeleted         = "deleted.html"
	pagePasswordError   = "password_error.html"
	pageNotFound        = "not_found.html"
	pageTooManyAttempts = "too_many_attempts.html"
	pageServerError     = "server_error.html"
)

type pageHandler struct {
	useCase  urlUseCase
	receipts receiptSigner
	pages    pageRenderer
	validate *validator.Validate
	links    links
	helpText string
}

func newPageHandler(
	useCase urlUseCase,
	receipts receiptSigner,
	pages pageRenderer,
	validate *validator.Validate,
	l links,
	helpText string,
) *pageHandler {
	return &pageHandler{
		useCase:  useCase,
		receipts: receipts,
		pages:    pages,
		validate: validate,
		links:    l,
		helpText: helpText,
	}
}

func (h *pageHandler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageIndex, indexPage{HelpText: h.helpText})
}

func (h *pageHandler) createByForm(w http.ResponseWriter, r *http.Request) {
	form := shortenForm{LongURL: strings.TrimSpace(r.PostFormValue("long_url"))}

	if err := h.validate.Struct(form); err != nil {
		msg := messageForTag("")

		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			msg = messageForTag(errs[0].Tag())
		}

		h.render(w, r, http.StatusBadRequest, pageIndex, indexPage{
			LongURL:  form.LongURL,
			Error:    msg,
			HelpText: h.helpText,
		})
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), usecase.ShortenInput{
		LongURL:  form.LongURL,
		ClientIP: clientIP(r),
	})
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			h.render(w, r, http.StatusBadRequest, pageIndex, indexPage{
				LongURL:  form.LongURL,
				Error:    verr.Message,
				HelpText: h.helpText,
			})
			return
		}

		h.serverError(w, r, err)
		return
	}

	h.redirectToSuccess(w, r, url)
}

// createLazy shortens whatever follows the host in the address bar,
// e.g. /https://example.com/some/path?q=1.
func (h *pageHandler) createLazy(w http.ResponseWriter, r *http.Request) {
	longURL := chi.URLParam(r, "*")
	if r.URL.RawQuery != "" {
		longURL += "?" + r.URL.RawQuery
	}

	url, err := h.useCase.ShortenURL(r.Context(), usecase.ShortenInput{
		LongURL:  longURL,
		ClientIP: clientIP(r),
		Lazy:     true,
	})
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			h.render(w, r, http.StatusBadRequest, pageCreateError, createErrorPage{Error: verr.Message})
			return
		}

		h.serverError(w, r, err)
		return
	}

	h.redirectToSuccess(w, r, url)
}

func (h *pageHandler) redirectToSuccess(w http.ResponseWriter, r *http.Request, url *entity.URL) {
	token, err := h.receipts.Sign(receiptPayload{
		ShortCode: url.ShortCode,
		LongURL:   url.LongURL,
		Password:  url.Password,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/s/"+token, http.StatusFound)
}

func (h *pageHandler) success(w http.ResponseWriter, r *http.Request) {
	var p receiptPayload

	if err := h.receipts.Verify(chi.URLParam(r, "receipt"), &p); err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		h.render(w, r, http.StatusNotFound, pageNotFound, nil)
		return
	}

	h.render(w, r, http.StatusOK, pageSuccess, successPage{
		ShortURL:  h.links.short(p.ShortCode),
		LongURL:   p.LongURL,
		InfoURL:   h.links.info(p.ShortCode, p.Password),
		DeleteURL: h.links.delete(p.ShortCode, p.Password),
		QRURL:     h.links.qr(p.ShortCode),
	})
}

func (h *pageHandler) redirect(w http.ResponseWriter, r *http.Request) {
	url, err := h.useCase.ResolveShortCode(r.Context(), chi.URLParam(r, "shortCode"))
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			h.notFound(w, r)
			return
		}

		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, url.LongURL, http.StatusFound)
}

func (h *pageHandler) info(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.GetURLInfo(r.Context(), shortCode, chi.URLParam(r, "password"), clientIP(r))
	if err != nil {
		h.authError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageInfo, infoPage{
		ShortURL:    h.links.short(url.ShortCode),
		LongURL:     url.LongURL,
		ShortClicks: url.ShortClicks,
		LongClicks:  url.LongClicks,
		CreatedAt:   url.CreatedAt,
	})
}

func (h *pageHandler) delete(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	if err := h.useCase.DeactivateURL(r.Context(), shortCode, chi.URLParam(r, "password"), clientIP(r)); err != nil {
		h.authError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageDeleted, deletedPage{ShortURL: h.links.short(shortCode)})
}

func (h *pageHandler) authError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrTooManyAttempts):
		h.render(w, r, http.StatusTooManyRequests, pageTooManyAttempts, nil)
	case errors.Is(err, entity.ErrPasswordMismatch):
		h.render(w, r, http.StatusForbidden, pagePasswordError, nil)
	default:
		h.serverError(w, r, err)
	}
}

func (h *pageHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, pageNotFound, nil)
}

func (h *pageHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
	h.render(w, r, http.StatusInternalServerError, pageServerError, nil)
}

func (h *pageHandler) panicked(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, pageServerError, nil)
}

func (h *pageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.pages.Page(w, r, status, name, data); err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// clientIP returns the client address set by middleware.RealIP, or "" when it is not an IP.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}

	return ip.String()
}
