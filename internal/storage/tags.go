package storage

import (
	"context"

	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

// GetTagRegistry loads <dataDir>/tags/<filename>. Registry problems are
// logged, not returned; a registry with a bad parent chain still plays.
func (r *RedisStorage) GetTagRegistry(ctx context.Context, filename string) (*tags.Registry, error) {
	data, err := r.readDataFile(tagsDir, filename)
	if err != nil {
		return nil, err
	}

	reg, err := tags.LoadRegistry(data, r.logger)
	if err != nil {
		return nil, err
	}
	for _, problem := range reg.Problems() {
		r.logger.Warn("Tag registry problem", "filename", filename, "problem", problem)
	}
	return reg, nil
}
