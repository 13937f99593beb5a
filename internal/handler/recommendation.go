package handler

import "net/http"

// GET /recommendations
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListRecommendations(r.Context())
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GET /recommendations/{id}
// id is the queryId the recommendations were posted against.
func (h *Handler) ListQueryRecommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	docs, err := h.service.ListRecommendationsForQuery(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GET /recommendations/user-email/{email}
func (h *Handler) ListMyRecommendations(w http.ResponseWriter, r *http.Request) {
	email, ok := pathParam(w, r, "email")
	if !ok {
		return
	}

	docs, err := h.service.ListRecommendationsByRecommender(r.Context(), email)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GET /recommendations/query-user/{email}
func (h *Handler) ListRecommendationsForMe(w http.ResponseWriter, r *http.Request) {
	email, ok := pathParam(w, r, "email")
	if !ok {
		return
	}

	docs, err := h.service.ListRecommendationsForQueryUser(r.Context(), email)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// POST /recommendations
func (h *Handler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	res, err := h.service.CreateRecommendation(r.Context(), doc)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /delete-recommendation/{id}
func (h *Handler) DeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.DeleteRecommendation(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
