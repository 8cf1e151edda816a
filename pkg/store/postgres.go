package store

import (
	"context"
	"fmt"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConfig struct {
	ConnString string
	TableName  string
}

// PostgresStore persists chunks across sessions. Inserts are
// upserts keyed by (file_id, chunk_index), so re-ingesting a file is
// idempotent.
type PostgresStore struct {
	config PostgresConfig
	pool   *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, config PostgresConfig) (*PostgresStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ps := &PostgresStore{
		config: config,
		pool:   pool,
	}

	if err := ps.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return ps, nil
}

func (ps *PostgresStore) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			file_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (file_id, chunk_index)
		)`, ps.config.TableName)

	if _, err := ps.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_file_id_idx
		ON %s (file_id)`,
		ps.config.TableName, ps.config.TableName)

	if _, err := ps.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (ps *PostgresStore) AddChunks(ctx context.Context, fileID string, chunks []models.Chunk) error {
	if fileID == "" {
		return fmt.Errorf("file ID is required")
	}

	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (file_id, file_name, page_number, chunk_index, content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_id, chunk_index) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			page_number = EXCLUDED.page_number,
			content = EXCLUDED.content`,
		ps.config.TableName)

	for _, chunk := range chunks {
		_, err := tx.Exec(ctx, stmt,
			fileID,
			chunk.FileName,
			chunk.PageNumber,
			chunk.ChunkIndex,
			chunk.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (ps *PostgresStore) RemoveChunksForFile(ctx context.Context, fileID string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE file_id = $1`, ps.config.TableName)
	if _, err := ps.pool.Exec(ctx, stmt, fileID); err != nil {
		return fmt.Errorf("failed to remove chunks: %w", err)
	}
	return nil
}

func (ps *PostgresStore) ListChunks(ctx context.Context, fileIDs ...string) ([]models.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT file_name, page_number, chunk_index, content
		FROM %s
		ORDER BY file_name, chunk_index`,
		ps.config.TableName)
	args := []interface{}{}

	if len(fileIDs) > 0 {
		query = fmt.Sprintf(`
			SELECT file_name, page_number, chunk_index, content
			FROM %s
			WHERE file_id = ANY($1)
			ORDER BY file_name, chunk_index`,
			ps.config.TableName)
		args = append(args, fileIDs)
	}

	rows, err := ps.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		if err := rows.Scan(&chunk.FileName, &chunk.PageNumber, &chunk.ChunkIndex, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (ps *PostgresStore) Close() {
	if ps.pool != nil {
		ps.pool.Close()
	}
}
