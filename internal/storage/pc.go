package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/dialogue-engine/pkg/actor"
)

// GetPCSpec reads <dataDir>/pcs/<pcID>.json. The file name is the ID; an id
// inside the file is ignored.
func (r *RedisStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	data, err := r.readDataFile(pcsDir, pcID+".json")
	if err != nil {
		return nil, err
	}

	var spec actor.PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode PC %s: %w", pcID, err)
	}
	spec.ID = pcID
	return &spec, nil
}

// ListPCs returns the IDs of every PC file, sorted.
func (r *RedisStorage) ListPCs(ctx context.Context) ([]string, error) {
	files, err := r.listDataFiles(pcsDir, isJSONFile)
	if err != nil {
		return nil, err
	}
	for i, name := range files {
		files[i] = strings.TrimSuffix(name, ".json")
	}
	return files, nil
}
