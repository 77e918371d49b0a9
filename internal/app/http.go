package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"flowintake/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Server is running..."))
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/save-selections" {
		s.handleSaveSelections(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/get-flows" {
		s.handleGetFlows(w, r)
		return
	}

	writeError(w, http.StatusNotFound, "Not found", errors.New("no such route"))
}

func (s *HTTPServer) handleSaveSelections(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := decodeBody(r, &sub); err != nil {
		// malformed bodies surface through the same generic 500 shape
		writeError(w, http.StatusInternalServerError, "Error saving data", err)
		return
	}

	records, err := s.service.CreateFlow(r.Context(), sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error saving data", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *HTTPServer) handleGetFlows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.FlowFilter{
		Key:          query.Get("key"),
		Value:        query.Get("value"),
		Email:        query.Get("email"),
		StartDate:    query.Get("startDate"),
		EndDate:      query.Get("endDate"),
		SpecificDate: query.Get("specificDate"),
	}

	records, err := s.service.ListFlows(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching data", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError keeps the {message, error} wire shape of the data endpoints.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	var domainErr *DomainError
	switch {
	case errors.As(err, &domainErr) && domainErr.Err != nil:
		detail = domainErr.Err.Error()
	case err != nil:
		detail = err.Error()
	}
	writeJSON(w, status, map[string]any{
		"message": message,
		"error":   detail,
	})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
