package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/mw"
)

type avatarUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type avatarURLResponse struct {
	URL string `json:"url"`
}

// AvatarUploadURL hands the client a presigned PUT URL plus the storage key
// to remember. The actual upload bypasses this server entirely.
func (h *Handler) AvatarUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	key, url, err := h.avatars.GetPresignedPutURL(r.Context(), userID)
	if err != nil {
		h.logger.Error(r.Context(), "avatar presign put failed", "user_id", userID, "error", err)
		writeError(w, common.ErrorInternal)
		return
	}
	writeJSON(w, http.StatusOK, avatarUploadResponse{Key: key, URL: url})
}

func (h *Handler) AvatarDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, common.ErrorValidation)
		return
	}

	url, err := h.avatars.GetPresignedGetURL(r.Context(), key)
	if err != nil {
		h.logger.Error(r.Context(), "avatar presign get failed", "error", err)
		writeError(w, common.ErrorInternal)
		return
	}
	writeJSON(w, http.StatusOK, avatarURLResponse{URL: url})
}
