// Package httpapi serves MIME type lookups over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MatthiasKunnen/xdgmime/internal/logger"
	"github.com/MatthiasKunnen/xdgmime/internal/metrics"
	"github.com/MatthiasKunnen/xdgmime/resolver"
)

// Server wires the HTTP routes of the lookup API.
type Server struct {
	resolver *resolver.Resolver
	metrics  *metrics.Manager
	log      logger.Logger
}

// NewServer creates a server answering lookups with r. m may be nil, in which case no metrics
// are recorded and /metrics is not served.
func NewServer(r *resolver.Resolver, m *metrics.Manager, log logger.Logger) *Server {
	return &Server{
		resolver: r,
		metrics:  m,
		log:      log,
	}
}

// Handler returns the root handler of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.instrument("healthz", s.handleHealth))
	mux.HandleFunc("GET /v1/mime/name", s.instrument("name", s.handleName))
	mux.HandleFunc("POST /v1/mime/sniff", s.instrument("sniff", s.handleSniff))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return requestID(mux)
}

type mimeResponse struct {
	Filename string  `json:"filename"`
	MimeType *string `json:"mime_type"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMimeResponse(filename string, mime string, ok bool) mimeResponse {
	resp := mimeResponse{Filename: filename}
	if ok {
		resp.MimeType = &mime
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleName handles GET /v1/mime/name?filename=.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	mime, ok, err := s.resolver.ByName(filename)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newMimeResponse(filename, mime, ok))
}

// handleSniff handles POST /v1/mime/sniff?filename=. The request body is the content to
// sniff, only its prefix is read. filename is optional.
func (s *Server) handleSniff(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	mime, ok, err := s.resolver.Detect(r.Body, filename)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newMimeResponse(filename, mime, ok))
}

func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, resolver.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	default:
		s.log.Error(r.Context(), "lookup failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
