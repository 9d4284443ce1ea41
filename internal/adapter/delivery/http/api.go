package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/lzy/internal/entity"
	"github.com/vadimbarashkov/lzy/internal/usecase"
	"github.com/vadimbarashkov/lzy/pkg/response"
)

const passwordHeader = "X-Url-Password"

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type apiHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	links    links
}

func newAPIHandler(useCase urlUseCase, validate *validator.Validate, l links) *apiHandler {
	return &apiHandler{
		useCase:  useCase,
		validate: validate,
		links:    l,
	}
}

func (h *apiHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), usecase.ShortenInput{
		LongURL:  req.LongURL,
		ClientIP: clientIP(r),
	})
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			status := http.StatusBadRequest
			if errors.Is(err, entity.ErrForbiddenDomain) {
				status = http.StatusUnprocessableEntity
			}

			render.Status(r, status)
			render.JSON(w, r, response.ErrorResponse(verr.Message))
			return
		}

		h.serverError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toURLResponse(url, h.links))
}

func (h *apiHandler) getURLInfo(w http.ResponseWriter, r *http.Request) {
	url, err := h.useCase.GetURLInfo(r.Context(), chi.URLParam(r, "shortCode"), r.Header.Get(passwordHeader), clientIP(r))
	if err != nil {
		h.authError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLInfoResponse(url, h.links))
}

func (h *apiHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	err := h.useCase.DeactivateURL(r.Context(), chi.URLParam(r, "shortCode"), r.Header.Get(passwordHeader), clientIP(r))
	if err != nil {
		h.authError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

func (h *apiHandler) authError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrTooManyAttempts):
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, response.TooManyAttemptsResponse)
	case errors.Is(err, entity.ErrPasswordMismatch):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.ForbiddenResponse)
	default:
		h.serverError(w, r, err)
	}
}

func (h *apiHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.ServerErrorResponse)
}
