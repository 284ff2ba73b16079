// Package handlers implements the HTTP API: auth, the tools collection,
// avatar presigning, and the SSE watch stream.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/dmitrijs2005/modtoolkit/internal/server/services"
	"github.com/dmitrijs2005/modtoolkit/internal/server/watch"
)

// Handler bundles the services the HTTP API delegates to.
type Handler struct {
	users   *services.UserService
	tools   *services.ToolService
	avatars *services.AvatarService
	hub     *watch.Hub
	logger  logging.Logger
}

func New(users *services.UserService, tools *services.ToolService, avatars *services.AvatarService, hub *watch.Hub, logger logging.Logger) *Handler {
	return &Handler{
		users:   users,
		tools:   tools,
		avatars: avatars,
		hub:     hub,
		logger:  logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses. Internal details never
// reach the client; they are logged by the caller if needed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}
