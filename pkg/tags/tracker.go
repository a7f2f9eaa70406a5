package tags

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrUnknownTag = errors.New("unknown dialogue tag")
	ErrCycle      = errors.New("cyclic tag parent chain")
)

// CycleError is returned when a parent chain loops back on itself.
type CycleError struct {
	Chain []string // tags walked, ending with the repeated one
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// Tracker hands out the next unplayed line of a tag. Progress lives only as
// long as the Tracker.
type Tracker struct {
	registry *Registry
	progress map[string]int
	logger   *slog.Logger
}

// NewTracker creates a tracker over registry.
func NewTracker(registry *Registry, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		registry: registry,
		progress: make(map[string]int),
		logger:   logger,
	}
}

// NextLine returns the next line of the named tag, falling back through its
// parents once it is exhausted. Parent cursors advance as well and are never
// reset. An exhausted chain returns "" and a nil error.
func (t *Tracker) NextLine(name string) (string, error) {
	tag := t.registry.Tag(name)
	if tag == nil {
		t.logger.Warn("Tag not found in registry", "tag", name)
		return "", fmt.Errorf("%w: %s", ErrUnknownTag, name)
	}

	visited := make(map[string]bool)
	var chain []string
	for tag != nil {
		chain = append(chain, tag.Name)
		if visited[tag.Name] {
			err := &CycleError{Chain: chain}
			t.logger.Error("Aborting tag fallback", "tag", name, "error", err)
			return "", err
		}
		visited[tag.Name] = true

		if line, ok := t.take(tag); ok {
			return line, nil
		}
		if tag.Parent == "" {
			break
		}
		tag = t.registry.Tag(tag.Parent)
		if tag == nil {
			t.logger.Warn("Tag parent not found in registry", "tag", chain[len(chain)-1])
		}
	}
	return "", nil
}

// Remaining reports how many lines of the tag itself are unplayed.
func (t *Tracker) Remaining(name string) int {
	tag := t.registry.Tag(name)
	if tag == nil {
		return 0
	}
	return len(tag.Lines) - t.progress[name]
}

// Reset forgets all progress.
func (t *Tracker) Reset() {
	clear(t.progress)
}

func (t *Tracker) take(tag *Tag) (string, bool) {
	idx := t.progress[tag.Name]
	if idx >= len(tag.Lines) {
		return "", false
	}
	t.progress[tag.Name] = idx + 1
	return tag.Lines[idx], true
}
