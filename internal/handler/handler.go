package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/actuallystonmai/alt-choice/internal/auth"
	"github.com/actuallystonmai/alt-choice/internal/domain"
	"github.com/actuallystonmai/alt-choice/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// maxBodyBytes caps JSON request bodies at 100kb.
const maxBodyBytes = 100 << 10

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service *service.Service
	auth    *auth.Manager
	store   Pinger
}

func NewHandler(svc *service.Service, authManager *auth.Manager, store Pinger) *Handler {
	return &Handler{service: svc, auth: authManager, store: store}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// Store failures and malformed ids surface as a bare 500; details are
// logged by the service layer.
func writeInternalError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// decodeDocument reads a JSON object body. An empty body decodes to an
// empty document.
func decodeDocument(w http.ResponseWriter, r *http.Request) (domain.Document, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "Could not read request body")
		return nil, false
	}

	doc := domain.Document{}
	if len(bytes.TrimSpace(body)) == 0 {
		return doc, true
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object")
		return nil, false
	}
	if doc == nil {
		doc = domain.Document{}
	}
	return doc, true
}

// pathParam returns the decoded value of a chi URL parameter. chi matches
// on the escaped path, so "a%40example.com" arrives undecoded.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_path", "Malformed path parameter "+name)
		return "", false
	}
	return v, true
}
