package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

// PCSummary is one entry of the PC list
type PCSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Pronouns string `json:"pronouns,omitempty"`
}

// PCResponse is a PC as the dice checker sees it
type PCResponse struct {
	Spec        *actor.PCSpec  `json:"spec"`
	DisplayName string         `json:"display_name"`
	HP          int            `json:"hp"`
	MaxHP       int            `json:"max_hp"`
	AC          int            `json:"ac"`
	Modifiers   map[string]int `json:"modifiers"` // ability check modifiers
}

type PCHandler struct {
	log     *slog.Logger
	storage store.Storage
}

func NewPCHandler(log *slog.Logger, storage store.Storage) *PCHandler {
	return &PCHandler{
		log:     log,
		storage: storage,
	}
}

// List handles GET /v1/pcs
func (h *PCHandler) List(w http.ResponseWriter, r *http.Request) {
	pcIDs, err := h.storage.ListPCs(r.Context())
	if err != nil {
		h.log.Error("Failed to list PCs", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list PCs")
		return
	}

	// Initialize as empty slice instead of nil
	pcList := make([]PCSummary, 0, len(pcIDs))
	for _, pcID := range pcIDs {
		spec, err := h.storage.GetPCSpec(r.Context(), pcID)
		if err != nil {
			h.log.Warn("Failed to load PC spec", "error", err, "id", pcID)
			continue
		}
		pcList = append(pcList, PCSummary{
			ID:       spec.ID,
			Name:     spec.Name,
			Pronouns: spec.Pronouns,
		})
	}

	writeJSON(w, h.log, http.StatusOK, pcList)
}

// Get handles GET /v1/pcs/{id}
func (h *PCHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validFilename(id) {
		writeError(w, h.log, http.StatusBadRequest, "Invalid PC ID")
		return
	}

	spec, err := h.storage.GetPCSpec(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, h.log, http.StatusNotFound, "PC not found")
			return
		}
		h.log.Error("Failed to load PC spec", "error", err, "id", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to load PC")
		return
	}

	pc, err := actor.NewPCFromSpec(spec)
	if err != nil {
		h.log.Error("Failed to build PC from spec", "error", err, "id", id)
		writeError(w, h.log, http.StatusUnprocessableEntity, "Failed to build PC")
		return
	}

	modifiers := make(map[string]int)
	for name, score := range spec.Stats.ToAttributes() {
		modifiers[name] = dice.AbilityModifier(score)
	}

	writeJSON(w, h.log, http.StatusOK, PCResponse{
		Spec:        spec,
		DisplayName: pc.DisplayName(),
		HP:          pc.Actor.HP(),
		MaxHP:       pc.Actor.MaxHP(),
		AC:          pc.Actor.AC(),
		Modifiers:   modifiers,
	})
}
