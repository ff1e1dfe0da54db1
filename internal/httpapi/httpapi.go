// Package httpapi exposes the interpretation and assist features over HTTP.
//
// Routes:
//
//	POST /interpret_command           — free-text command to executable plan
//	POST /generate_summary            — transcript summary
//	POST /generate_bookmark_comment   — one-line bookmark comment
//	POST /chat                        — free-form Q&A about the recording
//	GET  /get_transcription/{id}      — stored transcript by recording ID
//
// Interpretation always answers 200 with a plan; the assist routes return 503
// when no oracle backend is configured. Health endpoints and the Prometheus
// metrics endpoint are registered by the app, not here.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tghensley/audiopilot/internal/assist"
	"github.com/tghensley/audiopilot/internal/interpret"
	"github.com/tghensley/audiopilot/internal/observe"
	"github.com/tghensley/audiopilot/internal/transcript"
)

// maxBodyBytes caps request bodies; transcripts in summary requests are the
// largest expected payload.
const maxBodyBytes = 4 << 20

// Handler serves the audiopilot HTTP API.
type Handler struct {
	interpreter *interpret.Interpreter
	assistant   *assist.Assistant
	store       *transcript.Store
	searcher    *transcript.Searcher
}

// New creates a Handler. All collaborators are required except searcher,
// which defaults to a searcher with standard thresholds.
func New(i *interpret.Interpreter, a *assist.Assistant, store *transcript.Store, searcher *transcript.Searcher) *Handler {
	if searcher == nil {
		searcher = transcript.NewSearcher()
	}
	return &Handler{interpreter: i, assistant: a, store: store, searcher: searcher}
}

// Register adds all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /interpret_command", h.InterpretCommand)
	mux.HandleFunc("POST /generate_summary", h.GenerateSummary)
	mux.HandleFunc("POST /generate_bookmark_comment", h.GenerateBookmarkComment)
	mux.HandleFunc("POST /chat", h.Chat)
	mux.HandleFunc("POST /search_transcript", h.SearchTranscript)
	mux.HandleFunc("GET /get_transcription/{id}", h.GetTranscription)
}

type interpretRequest struct {
	Command string                     `json:"command"`
	State   interpret.AppStateSnapshot `json:"state"`
	History []string                   `json:"history"`
}

// InterpretCommand converts a command into a plan. It always answers 200: bad
// input degrades to an unknown-command plan rather than a client error, so
// the player UI has exactly one response shape to handle.
func (h *Handler) InterpretCommand(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := decodeJSON(r, &req); err != nil {
		observe.Logger(r.Context()).Warn("bad interpret request body", "error", err)
	}
	plan := h.interpreter.InterpretCommand(r.Context(), req.Command, req.State, req.History)
	writeJSON(w, http.StatusOK, plan)
}

type summaryRequest struct {
	Transcript string `json:"transcript"`
}

type textResponse struct {
	Text string `json:"text"`
}

// GenerateSummary produces a summary of the posted transcript text.
func (h *Handler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.assistant.Summarize(r.Context(), req.Transcript)
	if err != nil {
		writeAssistError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

type bookmarkCommentRequest struct {
	Context   string `json:"context"`
	Timestamp string `json:"timestamp"`
}

// GenerateBookmarkComment writes a one-line comment for a bookmark.
func (h *Handler) GenerateBookmarkComment(w http.ResponseWriter, r *http.Request) {
	var req bookmarkCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.assistant.BookmarkComment(r.Context(), req.Context, req.Timestamp)
	if err != nil {
		writeAssistError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

type chatRequest struct {
	Question   string   `json:"question"`
	Transcript string   `json:"transcript"`
	History    []string `json:"history"`
}

// Chat answers a free-form question about the recording.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.assistant.Chat(r.Context(), req.Question, req.Transcript, req.History)
	if err != nil {
		writeAssistError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

type searchRequest struct {
	RecordingID string `json:"recording_id"`
	Query       string `json:"query"`
}

type searchResponse struct {
	Results []transcript.SearchResult `json:"results"`
}

// SearchTranscript fuzzy-searches a stored transcript for a phrase.
func (h *Handler) SearchTranscript(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.store.Load(req.RecordingID)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transcript not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid recording id")
		return
	}
	results := h.searcher.Search(t, req.Query)
	if results == nil {
		results = []transcript.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// GetTranscription returns the stored transcript for a recording.
func (h *Handler) GetTranscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.store.Load(id)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transcript not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid recording id")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// writeAssistError maps assist failures onto HTTP statuses: 503 when no
// oracle is configured, 400 for rejected input, 502 for backend failure.
func writeAssistError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assist.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured")
	case isBackendError(err):
		observe.Logger(r.Context()).Error("assist backend failure", "error", err)
		writeError(w, http.StatusBadGateway, "AI backend error")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// isBackendError distinguishes oracle transport failures from input
// validation failures, which assist reports without wrapping a cause.
func isBackendError(err error) bool {
	return errors.Unwrap(err) != nil
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}
