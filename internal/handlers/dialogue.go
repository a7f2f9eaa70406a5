package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

// maxGraphBytes bounds uploaded dialogue files
const maxGraphBytes = 1 << 20

// DialogueResponse is a graph together with its validation problems
type DialogueResponse struct {
	Filename string            `json:"filename"`
	Document dialogue.Document `json:"document"`
	Problems []string          `json:"problems"`
}

type DialogueHandler struct {
	log     *slog.Logger
	storage store.Storage
}

func NewDialogueHandler(log *slog.Logger, storage store.Storage) *DialogueHandler {
	return &DialogueHandler{
		log:     log,
		storage: storage,
	}
}

// List handles GET /v1/dialogues
func (h *DialogueHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.storage.ListGraphs(r.Context())
	if err != nil {
		h.log.Error("Failed to list dialogues", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list dialogues")
		return
	}
	writeJSON(w, h.log, http.StatusOK, names)
}

// Get handles GET /v1/dialogues/{filename}
func (h *DialogueHandler) Get(w http.ResponseWriter, r *http.Request) {
	filename, ok := h.filename(w, r)
	if !ok {
		return
	}

	g, err := h.storage.GetGraph(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Dialogue not found")
			return
		}
		h.log.Error("Failed to get dialogue", "error", err, "filename", filename)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve dialogue")
		return
	}

	writeJSON(w, h.log, http.StatusOK, newDialogueResponse(filename, g))
}

// Put handles PUT /v1/dialogues/{filename}?ttl=30m. The body is stored in
// the graph cache, where it shadows any file of the same name.
func (h *DialogueHandler) Put(w http.ResponseWriter, r *http.Request) {
	filename, ok := h.filename(w, r)
	if !ok {
		return
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, h.log, http.StatusBadRequest, fmt.Sprintf("Invalid ttl %q", raw))
			return
		}
		ttl = d
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxGraphBytes))
	if err != nil {
		writeError(w, h.log, http.StatusRequestEntityTooLarge, "Dialogue too large")
		return
	}

	g, err := h.storage.PutGraph(r.Context(), filename, data, ttl)
	if err != nil {
		var loadErr *dialogue.LoadError
		switch {
		case errors.As(err, &loadErr):
			writeError(w, h.log, http.StatusBadRequest, loadErr.Error())
		case errors.Is(err, store.ErrNoCache):
			writeError(w, h.log, http.StatusServiceUnavailable, "Dialogue cache is not configured")
		default:
			h.log.Error("Failed to save dialogue", "error", err, "filename", filename)
			writeError(w, h.log, http.StatusInternalServerError, "Failed to save dialogue")
		}
		return
	}

	h.log.Info("Dialogue stored", "filename", filename, "ttl", ttl, "nodes", g.Len())
	writeJSON(w, h.log, http.StatusOK, newDialogueResponse(filename, g))
}

// Delete handles DELETE /v1/dialogues/{filename}. Only cached copies can be
// removed; files in the data directory are left alone.
func (h *DialogueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename, ok := h.filename(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteGraph(r.Context(), filename); err != nil {
		if errors.Is(err, store.ErrNoCache) {
			writeError(w, h.log, http.StatusServiceUnavailable, "Dialogue cache is not configured")
			return
		}
		h.log.Error("Failed to delete dialogue", "error", err, "filename", filename)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to delete dialogue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DialogueHandler) filename(w http.ResponseWriter, r *http.Request) (string, bool) {
	filename := chi.URLParam(r, "filename")
	if !validFilename(filename) {
		writeError(w, h.log, http.StatusBadRequest, "Invalid filename")
		return "", false
	}
	return filename, true
}

func newDialogueResponse(filename string, g *dialogue.Graph) DialogueResponse {
	problems := g.Problems()
	if problems == nil {
		problems = []string{}
	}
	return DialogueResponse{
		Filename: filename,
		Document: g.Document(),
		Problems: problems,
	}
}
