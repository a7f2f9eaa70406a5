package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

func TestMockStorage_Graphs(t *testing.T) {
	mockStorage := NewMockStorage()
	ctx := context.Background()

	stored, err := mockStorage.PutGraph(ctx, "camp.json", []byte(`{"nodes":[{"guid":"a","line":"Hello"}]}`), 0)
	if err != nil {
		t.Fatalf("PutGraph() error = %v", err)
	}
	if stored.Len() != 1 {
		t.Errorf("PutGraph() returned %d nodes, want 1", stored.Len())
	}

	g, err := mockStorage.GetGraph(ctx, "camp.json")
	if err != nil {
		t.Fatalf("GetGraph() error = %v", err)
	}
	if g.StartNode().Line != "Hello" {
		t.Errorf("Expected start line 'Hello', got %q", g.StartNode().Line)
	}

	names, _ := mockStorage.ListGraphs(ctx)
	if len(names) != 1 || names[0] != "camp.json" {
		t.Errorf("Expected [camp.json], got %v", names)
	}

	if _, err := mockStorage.PutGraph(ctx, "bad.json", []byte(`not json`), 0); err == nil {
		t.Error("Expected error for malformed graph")
	}

	_ = mockStorage.DeleteGraph(ctx, "camp.json")
	if _, err := mockStorage.GetGraph(ctx, "camp.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMockStorage_TagsAndPCs(t *testing.T) {
	mockStorage := NewMockStorage()
	ctx := context.Background()

	mockStorage.AddTagRegistry("barks.json", tags.NewRegistry([]tags.Tag{{Name: "idle"}}, nil))
	reg, err := mockStorage.GetTagRegistry(ctx, "barks.json")
	if err != nil || reg.Tag("idle") == nil {
		t.Fatalf("Expected idle tag, got %v (err %v)", reg, err)
	}

	mockStorage.AddPCSpec("wyll", &actor.PCSpec{ID: "wyll", Name: "Wyll"})
	mockStorage.AddPCSpec("astarion", &actor.PCSpec{ID: "astarion", Name: "Astarion"})

	spec, err := mockStorage.GetPCSpec(ctx, "wyll")
	if err != nil {
		t.Fatalf("GetPCSpec() error = %v", err)
	}
	if spec.Name != "Wyll" {
		t.Errorf("Expected name 'Wyll', got %q", spec.Name)
	}

	ids, _ := mockStorage.ListPCs(ctx)
	if len(ids) != 2 || ids[0] != "astarion" {
		t.Errorf("Expected sorted PC IDs, got %v", ids)
	}

	if _, err := mockStorage.GetPCSpec(ctx, "minsc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMockStorage_Ping(t *testing.T) {
	mockStorage := NewMockStorage()
	if err := mockStorage.Ping(context.Background()); err != nil {
		t.Errorf("Expected nil ping error, got %v", err)
	}

	mockStorage.SetPingError(errors.New("down"))
	if err := mockStorage.Ping(context.Background()); err == nil {
		t.Error("Expected ping error")
	}
}
