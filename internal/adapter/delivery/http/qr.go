package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// qr serves a PNG QR code of the short URL. The store is not consulted.
func (h *pageHandler) qr(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.links.short(chi.URLParam(r, "shortCode")), qrcode.Medium, qrSize)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
