// Package tags plays single lines from named pools ("tags"). When a tag's
// lines run out, playback falls back to its parent tag.
package tags

import (
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"slices"
)

// Tag is a named, ordered pool of lines. Parent names another tag in the
// same registry.
type Tag struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"`
	Lines  []string `json:"lines"`
}

// File is the serialized form of a registry.
type File struct {
	Tags []Tag `json:"tags"`
}

// Registry indexes tags by name. It is read-only after construction.
type Registry struct {
	order  []string
	lookup map[string]*Tag
}

// LoadRegistry decodes a tag file.
func LoadRegistry(data []byte, logger *slog.Logger) (*Registry, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag registry: %w", err)
	}
	return NewRegistry(f.Tags, logger), nil
}

// NewRegistry indexes tags. Tags without a name are skipped; for duplicate
// names the first one wins and a warning is logged.
func NewRegistry(tags []Tag, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{lookup: make(map[string]*Tag, len(tags))}
	for i := range tags {
		t := tags[i]
		if t.Name == "" {
			logger.Warn("Skipping dialogue tag without a name", "index", i)
			continue
		}
		if _, exists := r.lookup[t.Name]; exists {
			logger.Warn("Duplicate dialogue tag name", "tag", t.Name)
			continue
		}
		t.Lines = slices.Clone(t.Lines)
		r.lookup[t.Name] = &t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Tag returns the named tag, or nil.
func (r *Registry) Tag(name string) *Tag {
	return r.lookup[name]
}

// Names returns tag names in load order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Validate reports parents that do not exist and parent chains that loop.
func (r *Registry) Validate() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range r.order {
			t := r.lookup[name]
			if t.Parent != "" && r.lookup[t.Parent] == nil {
				if !yield(fmt.Sprintf("Tag %s has missing parent %s", name, t.Parent)) {
					return
				}
			}
			if chain, ok := r.cycleFrom(name); ok {
				if !yield(fmt.Sprintf("Tag %s has a cyclic parent chain: %v", name, chain)) {
					return
				}
			}
		}
	}
}

// Problems collects every validation problem.
func (r *Registry) Problems() []string {
	return slices.Collect(r.Validate())
}

// cycleFrom follows parents from name and reports the chain if it revisits
// a tag.
func (r *Registry) cycleFrom(name string) ([]string, bool) {
	visited := make(map[string]bool)
	var chain []string
	for t := r.lookup[name]; t != nil; t = r.lookup[t.Parent] {
		chain = append(chain, t.Name)
		if visited[t.Name] {
			return chain, true
		}
		visited[t.Name] = true
		if t.Parent == "" {
			break
		}
	}
	return nil, false
}
