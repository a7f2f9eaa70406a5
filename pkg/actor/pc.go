package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/d20"
)

const (
	defaultHP = 10
	defaultAC = 10
)

// Stats5e represents the six core D&D 5e ability scores
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PCSpec is the serializable description of the character making dice checks
type PCSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Pronouns        string         `json:"pronouns,omitempty"`
	Stats           Stats5e        `json:"stats,omitempty"`
	HP              int            `json:"hp,omitempty"`
	MaxHP           int            `json:"max_hp,omitempty"`
	AC              int            `json:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"` // Skills, proficiencies, etc.
}

// PC pairs a spec with the d20.Actor built from it
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor
}

// NewPCFromSpec builds the runtime actor for a spec
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("spec must have an id")
	}

	maxHP := spec.MaxHP
	if maxHP <= 0 {
		maxHP = spec.HP
	}
	if maxHP <= 0 {
		maxHP = defaultHP
	}
	ac := spec.AC
	if ac <= 0 {
		ac = defaultAC
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	a, err := d20.NewActor(spec.ID).
		WithHP(maxHP).
		WithAC(ac).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP > 0 && spec.HP != maxHP {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &PC{Spec: spec, Actor: a}, nil
}

// LoadPC reads a PC spec from a JSON file. The filename (without .json)
// overrides any ID in the JSON.
func LoadPC(path string) (*PC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PC file: %w", err)
	}

	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}
	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")

	return NewPCFromSpec(&spec)
}

// DisplayName returns the name to show in a dice window, e.g. "Shadowheart (she/her)"
func (pc *PC) DisplayName() string {
	if pc == nil || pc.Spec == nil {
		return ""
	}
	name := pc.Spec.Name
	if name == "" {
		name = pc.Spec.ID
	}
	if pc.Spec.Pronouns != "" {
		name = fmt.Sprintf("%s (%s)", name, pc.Spec.Pronouns)
	}
	return name
}
