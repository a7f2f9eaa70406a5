package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoCache  = errors.New("no graph cache configured")
)

// Storage defines a unified interface for loading dialogue data.
// Graphs may be overridden in Redis; everything else is read from the data
// directory.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Graph operations (Redis first, then filesystem)
	ListGraphs(ctx context.Context) ([]string, error)
	GetGraph(ctx context.Context, filename string) (*dialogue.Graph, error)
	PutGraph(ctx context.Context, filename string, data []byte, ttl time.Duration) (*dialogue.Graph, error)
	DeleteGraph(ctx context.Context, filename string) error

	// Tag registry operations (filesystem-backed)
	GetTagRegistry(ctx context.Context, filename string) (*tags.Registry, error)

	// PC operations (filesystem-backed, returns PCSpec not PC)
	// Use actor.NewPCFromSpec to build the d20.Actor from the returned spec
	GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error)
	ListPCs(ctx context.Context) ([]string, error)
}
