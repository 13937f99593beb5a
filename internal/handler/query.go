package handler

import "net/http"

// GET /query
func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListQueries(r.Context())
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GET /my-query/{email}
func (h *Handler) ListMyQueries(w http.ResponseWriter, r *http.Request) {
	email, ok := pathParam(w, r, "email")
	if !ok {
		return
	}

	docs, err := h.service.ListQueriesByUser(r.Context(), email)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GET /query/{id}
// An unknown id answers 200 with a JSON null.
func (h *Handler) GetQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetQuery(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// POST /query
func (h *Handler) CreateQuery(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	res, err := h.service.CreateQuery(r.Context(), doc)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PUT /update-query/{id}
func (h *Handler) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	fields, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	res, err := h.service.UpdateQuery(r.Context(), id, fields)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /delete-query/{id}
// Recommendations pointing at the query are left in place.
func (h *Handler) DeleteQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.DeleteQuery(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /increment/{id}
func (h *Handler) IncrementRecommendationCount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.IncrementRecommendationCount(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /decrement/{id}
func (h *Handler) DecrementRecommendationCount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.DecrementRecommendationCount(r.Context(), id)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
