package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytfetch/transcript-service/pkg/service"
	"github.com/ytfetch/transcript-service/pkg/transcript"
)

// Version is the API version reported by the root and health endpoints.
const Version = "1.0.0"

// transcriptRequest is the body for POST /transcript.
type transcriptRequest struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
}

// batchRequest is the body for POST /transcripts/batch.
type batchRequest struct {
	VideoIDs []string `json:"video_ids"`
	Language string   `json:"language"`
}

// batchResponse is the reply for POST /transcripts/batch.
type batchResponse struct {
	TotalProcessed      int                  `json:"total_processed"`
	Successful          int                  `json:"successful"`
	Failed              int                  `json:"failed"`
	Results             []*transcript.Result `json:"results"`
	TotalProcessingTime float64              `json:"total_processing_time"`
}

// textResponse is the reply for text-format transcript requests.
type textResponse struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Text     string `json:"text"`
	Error    string `json:"error,omitempty"`
}

// errorResponse is the envelope for HTTP-level errors.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "YouTube Transcript API",
		"status":  "running",
		"version": Version,
		"endpoints": map[string]string{
			"single":       "/transcript",
			"batch":        "/transcripts/batch",
			"get_by_query": "/transcript?video_id={video_id}&language={language}",
			"text_only":    "/transcript/text?video_id={video_id}&language={language}",
			"health":       "/health",
			"stats":        "/stats",
			"metrics":      "/metrics",
		},
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "video_id is required")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	result := s.svc.Fetch(r.Context(), req.VideoID, req.Language)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if len(req.VideoIDs) == 0 {
		writeError(w, http.StatusBadRequest, "video_ids must not be empty")
		return
	}
	if len(req.VideoIDs) > service.MaxBatchSize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Maximum %d videos per batch request", service.MaxBatchSize))
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	results, summary := s.svc.Batch(r.Context(), req.VideoIDs, req.Language)

	writeJSON(w, http.StatusOK, batchResponse{
		TotalProcessed:      summary.TotalProcessed,
		Successful:          summary.Successful,
		Failed:              summary.Failed,
		Results:             results,
		TotalProcessingTime: summary.TotalProcessingTime,
	})
}

func (s *Server) handleTranscriptQuery(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video_id query parameter is required")
		return
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}

	result := s.svc.Fetch(r.Context(), videoID, language)

	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		writeJSON(w, http.StatusOK, toTextResponse(result))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTranscriptText(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video_id query parameter is required")
		return
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}

	result := s.svc.Fetch(r.Context(), videoID, language)
	writeJSON(w, http.StatusOK, toTextResponse(result))
}

// toTextResponse flattens a result into a single text string, dropping
// timing information.
func toTextResponse(result *transcript.Result) textResponse {
	if !result.IsSuccess() || len(result.Entries) == 0 {
		errMsg := result.Error
		if errMsg == "" {
			errMsg = "No transcript available"
		}
		return textResponse{
			VideoID:  result.VideoID,
			Language: result.Language,
			Text:     "",
			Error:    errMsg,
		}
	}

	parts := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		parts = append(parts, entry.Text)
	}

	return textResponse{
		VideoID:  result.VideoID,
		Language: result.Language,
		Text:     strings.Join(parts, " "),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"service":       "transcript-service",
		"version":       Version,
		"async_workers": s.workers,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rate_limiter":  s.svc.Stats(),
		"cache_entries": s.svc.CacheLen(),
	})
}

// metricsHandler exposes the Prometheus metrics endpoint.
func metricsHandler() http.HandlerFunc {
	h := promhttp.Handler()
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}
