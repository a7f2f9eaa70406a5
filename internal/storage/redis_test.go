package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fileGraph = `{"startNodeGuid":"a","nodes":[{"guid":"a","speaker":"Shadowheart","line":"From the file."}]}`
const cachedGraph = `{"startNodeGuid":"a","nodes":[{"guid":"a","speaker":"Shadowheart","line":"From Redis."}]}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, sub, name, content string) {
	t.Helper()
	path := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, name), []byte(content), 0644))
}

func setupRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	dataDir := t.TempDir()

	s, err := NewRedisStorage("redis://"+mr.Addr(), dataDir, testLogger())
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
		mr.Close()
	})
	return s, mr, dataDir
}

func TestRedisStorage_GetGraphPrefersRedis(t *testing.T) {
	s, _, dataDir := setupRedisStorage(t)
	ctx := context.Background()
	writeFile(t, dataDir, "dialogues", "camp.json", fileGraph)

	g, err := s.GetGraph(ctx, "camp.json")
	require.NoError(t, err)
	assert.Equal(t, "From the file.", g.StartNode().Line)

	_, err = s.PutGraph(ctx, "camp.json", []byte(cachedGraph), 0)
	require.NoError(t, err)
	g, err = s.GetGraph(ctx, "camp.json")
	require.NoError(t, err)
	assert.Equal(t, "From Redis.", g.StartNode().Line)

	require.NoError(t, s.DeleteGraph(ctx, "camp.json"))
	g, err = s.GetGraph(ctx, "camp.json")
	require.NoError(t, err)
	assert.Equal(t, "From the file.", g.StartNode().Line)
}

func TestRedisStorage_PutGraphRejectsBadData(t *testing.T) {
	s, mr, _ := setupRedisStorage(t)
	ctx := context.Background()

	_, err := s.PutGraph(ctx, "bad.json", []byte(`{"nodes":[{"guid":"a"},{"guid":"a"}]}`), time.Minute)
	require.Error(t, err)
	assert.False(t, mr.Exists(graphKeyPrefix+"bad.json"))
}

func TestRedisStorage_PutGraphTTL(t *testing.T) {
	s, mr, _ := setupRedisStorage(t)
	ctx := context.Background()

	stored, err := s.PutGraph(ctx, "temp.json", []byte(cachedGraph), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "From Redis.", stored.StartNode().Line)
	assert.True(t, mr.Exists(graphKeyPrefix+"temp.json"))

	mr.FastForward(2 * time.Minute)

	_, err = s.GetGraph(ctx, "temp.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStorage_ListGraphs(t *testing.T) {
	s, _, dataDir := setupRedisStorage(t)
	ctx := context.Background()
	writeFile(t, dataDir, "dialogues", "camp.json", fileGraph)
	writeFile(t, dataDir, "dialogues", "notes.txt", "ignored")
	_, err := s.PutGraph(ctx, "tavern.json", []byte(cachedGraph), 0)
	require.NoError(t, err)
	_, err = s.PutGraph(ctx, "camp.json", []byte(cachedGraph), 0)
	require.NoError(t, err)

	names, err := s.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"camp.json", "tavern.json"}, names)
}

func TestRedisStorage_GetGraphErrors(t *testing.T) {
	s, _, dataDir := setupRedisStorage(t)
	ctx := context.Background()

	_, err := s.GetGraph(ctx, "missing.json")
	assert.ErrorIs(t, err, store.ErrNotFound)

	writeFile(t, dataDir, "dialogues", "broken.json", `{"nodes":[{"guid":""}]}`)
	_, err = s.GetGraph(ctx, "broken.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStorage_Ping(t *testing.T) {
	s, mr, _ := setupRedisStorage(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.WaitForConnection(ctx, 3, 10*time.Millisecond))

	mr.Close()
	assert.Error(t, s.Ping(ctx))
}

func TestRedisStorage_WaitForConnectionTimeout(t *testing.T) {
	s, err := NewRedisStorage("redis://localhost:1", t.TempDir(), testLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, s.WaitForConnection(ctx, 30, 50*time.Millisecond))
}

func TestNewRedisStorage_BadURL(t *testing.T) {
	_, err := NewRedisStorage("://nope", t.TempDir(), testLogger())
	assert.Error(t, err)
}

func TestFileStorage(t *testing.T) {
	dataDir := t.TempDir()
	s := NewFileStorage(dataDir, testLogger())
	ctx := context.Background()

	writeFile(t, dataDir, "dialogues", "camp.json", fileGraph)
	writeFile(t, dataDir, "tags", "barks.json", `{"tags":[{"name":"idle","lines":["Hmm."]},{"name":"loop","parent":"loop"}]}`)
	writeFile(t, dataDir, "pcs", "tav.json", `{"id":"ignored","name":"Tav","stats":{"strength":14}}`)

	require.NoError(t, s.Ping(ctx))
	assert.Nil(t, s.Client())

	names, err := s.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"camp.json"}, names)

	g, err := s.GetGraph(ctx, "camp.json")
	require.NoError(t, err)
	assert.Equal(t, "a", g.StartNode().GUID)

	_, err = s.PutGraph(ctx, "x.json", []byte(fileGraph), 0)
	assert.ErrorIs(t, err, store.ErrNoCache)
	assert.ErrorIs(t, s.DeleteGraph(ctx, "x.json"), store.ErrNoCache)

	reg, err := s.GetTagRegistry(ctx, "barks.json")
	require.NoError(t, err)
	require.NotNil(t, reg.Tag("idle"))
	assert.Len(t, reg.Problems(), 1)

	_, err = s.GetTagRegistry(ctx, "none.json")
	assert.ErrorIs(t, err, store.ErrNotFound)

	spec, err := s.GetPCSpec(ctx, "tav")
	require.NoError(t, err)
	assert.Equal(t, "tav", spec.ID)
	assert.Equal(t, 14, spec.Stats.Strength)

	_, err = s.GetPCSpec(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ids, err := s.ListPCs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tav"}, ids)

	require.NoError(t, s.Close())
}

func TestFileStorage_DataFiles(t *testing.T) {
	dataDir := t.TempDir()
	s := NewFileStorage(dataDir, testLogger())
	ctx := context.Background()

	writeFile(t, dataDir, "dialogues", "camp.json", fileGraph)
	writeFile(t, dataDir, "pcs", "wyll.json", `{"name":"Wyll"}`)
	writeFile(t, dataDir, "pcs", "karlach.json", `{"name":"Karlach"}`)
	writeFile(t, dataDir, "pcs", "notes.md", "not a PC")
	writeFile(t, dataDir, "pcs", "broken.json", `{"name":`)

	ids, err := s.ListPCs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "karlach", "wyll"}, ids)

	_, err = s.GetPCSpec(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	tests := []struct {
		name string
		get  func() error
	}{
		{"pc outside pcs", func() error { _, err := s.GetPCSpec(ctx, "../dialogues/camp"); return err }},
		{"tags outside tags", func() error { _, err := s.GetTagRegistry(ctx, "../dialogues/camp.json"); return err }},
		{"graph outside dialogues", func() error { _, err := s.GetGraph(ctx, "../pcs/wyll.json"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.get(), store.ErrNotFound)
		})
	}
}

func TestFileStorage_EmptyDataDir(t *testing.T) {
	s := NewFileStorage(filepath.Join(t.TempDir(), "nothing"), testLogger())
	ctx := context.Background()

	names, err := s.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	ids, err := s.ListPCs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStorage_YAMLGraphs(t *testing.T) {
	s, _, dataDir := setupRedisStorage(t)
	ctx := context.Background()
	writeFile(t, dataDir, "dialogues", "camp.yaml", "startNodeGuid: a\nnodes:\n  - guid: a\n    speaker: Astarion\n    line: From YAML.\n")

	g, err := s.GetGraph(ctx, "camp.yaml")
	require.NoError(t, err)
	assert.Equal(t, "From YAML.", g.StartNode().Line)

	_, err = s.PutGraph(ctx, "tavern.yml", []byte("nodes:\n  - guid: b\n    line: Cached YAML.\n"), 0)
	require.NoError(t, err)
	g, err = s.GetGraph(ctx, "tavern.yml")
	require.NoError(t, err)
	assert.Equal(t, "Cached YAML.", g.StartNode().Line)

	_, err = s.PutGraph(ctx, "bad.yaml", []byte("nodes: [unclosed"), 0)
	assert.Error(t, err)

	names, err := s.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"camp.yaml", "tavern.yml"}, names)
}
