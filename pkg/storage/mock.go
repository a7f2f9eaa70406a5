package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	graphs     map[string]*dialogue.Graph
	registries map[string]*tags.Registry
	pcSpecs    map[string]*actor.PCSpec
	pingError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		graphs:     make(map[string]*dialogue.Graph),
		registries: make(map[string]*tags.Registry),
		pcSpecs:    make(map[string]*actor.PCSpec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// AddGraph adds a graph under filename
func (m *MockStorage) AddGraph(filename string, g *dialogue.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphs[filename] = g
}

// ListGraphs mocks listing graph files
func (m *MockStorage) ListGraphs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.graphs))
	for name := range m.graphs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// GetGraph mocks getting a graph by filename
func (m *MockStorage) GetGraph(ctx context.Context, filename string) (*dialogue.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.graphs[filename]
	if !ok {
		return nil, fmt.Errorf("graph %s: %w", filename, ErrNotFound)
	}
	return g, nil
}

// PutGraph mocks storing raw graph data; the data must load
func (m *MockStorage) PutGraph(ctx context.Context, filename string, data []byte, ttl time.Duration) (*dialogue.Graph, error) {
	g, err := dialogue.LoadFile(filename, data)
	if err != nil {
		return nil, err
	}
	m.AddGraph(filename, g)
	return g, nil
}

// DeleteGraph mocks deleting a graph
func (m *MockStorage) DeleteGraph(ctx context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.graphs, filename)
	return nil
}

// AddTagRegistry adds a tag registry under filename
func (m *MockStorage) AddTagRegistry(filename string, r *tags.Registry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registries[filename] = r
}

// GetTagRegistry mocks getting a tag registry
func (m *MockStorage) GetTagRegistry(ctx context.Context, filename string) (*tags.Registry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registries[filename]
	if !ok {
		return nil, fmt.Errorf("tag registry %s: %w", filename, ErrNotFound)
	}
	return r, nil
}

// AddPCSpec adds a PC spec to the mock storage
func (m *MockStorage) AddPCSpec(pcID string, spec *actor.PCSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pcSpecs[pcID] = spec
}

// GetPCSpec mocks getting a PC spec by ID
func (m *MockStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, ok := m.pcSpecs[pcID]
	if !ok {
		return nil, fmt.Errorf("PC %s: %w", pcID, ErrNotFound)
	}
	return spec, nil
}

// ListPCs mocks listing PC IDs
func (m *MockStorage) ListPCs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.pcSpecs))
	for id := range m.pcSpecs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
