package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

type TagRegistryResponse struct {
	Filename string   `json:"filename"`
	Tags     []string `json:"tags"`
	Problems []string `json:"problems"`
}

type TagHandler struct {
	log     *slog.Logger
	storage store.Storage
}

func NewTagHandler(log *slog.Logger, storage store.Storage) *TagHandler {
	return &TagHandler{
		log:     log,
		storage: storage,
	}
}

// Get handles GET /v1/tags/{filename}
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !validFilename(filename) {
		writeError(w, h.log, http.StatusBadRequest, "Invalid filename")
		return
	}

	reg, err := h.storage.GetTagRegistry(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Tag registry not found")
			return
		}
		h.log.Error("Failed to get tag registry", "error", err, "filename", filename)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve tag registry")
		return
	}

	problems := reg.Problems()
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, TagRegistryResponse{
		Filename: filename,
		Tags:     reg.Names(),
		Problems: problems,
	})
}
