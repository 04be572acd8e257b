package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/upload", h.Upload)
}
