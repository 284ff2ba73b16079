package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/mw"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
)

type toolRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Progress    *int   `json:"progress"`
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	list, err := h.tools.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Tool{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetTool(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	tool, err := h.tools.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *Handler) CreateTool(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	var req toolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.tools.Create(r.Context(), userID, &models.Tool{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Progress:    req.Progress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	var req toolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := h.tools.Update(r.Context(), userID, chi.URLParam(r, "id"), &models.Tool{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Progress:    req.Progress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetToolEnabled handles the toggle patch. It is the only way to flip the
// enabled flag; full updates leave it untouched.
func (h *Handler) SetToolEnabled(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	var req enabledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.tools.SetEnabled(r.Context(), userID, chi.URLParam(r, "id"), req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	if err := h.tools.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
