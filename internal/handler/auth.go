package handler

import (
	"net/http"

	"github.com/actuallystonmai/alt-choice/internal/logging"
)

// POST /jwt
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	token, err := h.auth.IssueToken(payload)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("[auth] issue token")
		writeInternalError(w)
		return
	}

	h.auth.SetCookie(w, token)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
