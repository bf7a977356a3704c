package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChunkSearcher returns the most relevant material chunks for a query.
type ChunkSearcher interface {
	Search(ctx context.Context, materialID uuid.UUID, query string, k int) ([]string, error)
}

type chunkLister interface {
	ListTopChunks(ctx context.Context, materialID uuid.UUID, k int) ([]string, error)
}

// PGChunkSearcher serves chunks from Postgres in storage order, with a
// short-lived redis cache in front since the same material is queried
// repeatedly while a session runs.
type PGChunkSearcher struct {
	chunks chunkLister
	cache  *redis.Client
	ttl    time.Duration
}

func NewPGChunkSearcher(chunks chunkLister, cache *redis.Client) *PGChunkSearcher {
	return &PGChunkSearcher{
		chunks: chunks,
		cache:  cache,
		ttl:    10 * time.Minute,
	}
}

func (s *PGChunkSearcher) Search(ctx context.Context, materialID uuid.UUID, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 8
	}

	cacheKey := fmt.Sprintf("material_chunks:%s:%d", materialID, k)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []string
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	chunks, err := s.chunks.ListTopChunks(ctx, materialID, k)
	if err != nil {
		return nil, fmt.Errorf("list material chunks: %w", err)
	}

	if s.cache != nil && len(chunks) > 0 {
		if raw, err := json.Marshal(chunks); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				log.Printf("chunk cache set failed for %s: %v", materialID, err)
			}
		}
	}

	return chunks, nil
}
