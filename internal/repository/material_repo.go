package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MaterialChunkRepo struct {
	pool *pgxpool.Pool
}

func NewMaterialChunkRepo(pool *pgxpool.Pool) *MaterialChunkRepo {
	return &MaterialChunkRepo{pool: pool}
}

// ListTopChunks returns up to k chunks of a material in document order.
func (r *MaterialChunkRepo) ListTopChunks(ctx context.Context, materialID uuid.UUID, k int) ([]string, error) {
	query := `SELECT chunk_text FROM material_chunks WHERE material_id = $1 ORDER BY chunk_index LIMIT $2`

	rows, err := r.pool.Query(ctx, query, materialID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		chunks = append(chunks, text)
	}
	return chunks, rows.Err()
}
