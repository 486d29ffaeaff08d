// Package api exposes the pipeline over HTTP. The frontend is an external
// caller: it submits a generation request and receives back the published
// artifact's locators.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"brainrotify/types"
)

// Pipeline runs the generation pipeline for one request.
type Pipeline interface {
	Run(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error)
}

// Handler serves the pipeline endpoints.
type Handler struct {
	pipeline Pipeline
	log      *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(pipeline Pipeline, log *zap.Logger) *Handler {
	return &Handler{pipeline: pipeline, log: log}
}

// Routes registers the API on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.root)
	mux.HandleFunc("GET /ping", h.ping)
	mux.HandleFunc("POST /generate", h.generate)
	return mux
}

type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Retryable *bool  `json:"retryable,omitempty"`
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Brainrotify API!"})
}

func (h *Handler) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().Unix()})
}

// generate runs the whole pipeline synchronously; the request context
// cancels all in-flight work if the caller disconnects.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	h.log.Info("generation requested",
		zap.String("content", req.Content),
		zap.String("style", req.Style),
		zap.String("ticker", req.Ticker))

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("generation complete", zap.String("metadata_uri", result.MetadataURI))
	writeJSON(w, http.StatusOK, result)
}

// writeError maps the error taxonomy onto HTTP: validation problems are the
// caller's (400); stage failures are reported with the failing stage and
// whether resubmitting might help (500).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: valErr.Error()})
		return
	}

	var genErr *types.GenerationError
	if errors.As(err, &genErr) {
		retryable := genErr.Retryable
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     "failed to generate content",
			Details:   genErr.Error(),
			Stage:     string(genErr.Stage),
			Retryable: &retryable,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate content", Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
