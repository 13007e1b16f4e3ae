package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lumenchat/lumen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
)

// Store is a SQLite-backed chunk store. A single mutex serialises all
// writes so no reader ever observes a partially written batch.
type Store struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lumen/data/chunks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lumen", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chunks.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial_schema.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert stores or fully replaces a single chunk.
func (s *Store) Upsert(ctx context.Context, chunk domain.Chunk) error {
	return s.UpsertBatch(ctx, []domain.Chunk{chunk})
}

// UpsertBatch stores or replaces multiple chunks in one transaction.
func (s *Store) UpsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
			(id, source_path, source_name, content, sequence_index, embedding,
			 format_tag, start_line, end_line, token_estimate, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path = excluded.source_path,
			source_name = excluded.source_name,
			content = excluded.content,
			sequence_index = excluded.sequence_index,
			embedding = excluded.embedding,
			format_tag = excluded.format_tag,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			token_estimate = excluded.token_estimate,
			language = excluded.language,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("%w: chunk is missing an id", domain.ErrInvalidInput)
		}

		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.SourcePath, chunk.SourceName, chunk.Content,
			chunk.SequenceIndex, float32SliceToBytes(chunk.Embedding),
			chunk.Metadata.FormatTag,
			nullInt(chunk.Metadata.StartLine), nullInt(chunk.Metadata.EndLine),
			chunk.Metadata.TokenEstimate, nullString(chunk.Metadata.Language),
			createdAt,
		); err != nil {
			return fmt.Errorf("%w: saving chunk %s: %w", domain.ErrStorage, chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

// FetchAll returns every stored chunk, ordered by source path then sequence
// index.
func (s *Store) FetchAll(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, source_name, content, sequence_index, embedding,
		       format_tag, start_line, end_line, token_estimate, language, created_at
		FROM chunks
		ORDER BY source_path, sequence_index
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// FetchBySource returns the chunks of one source, in sequence order.
func (s *Store) FetchBySource(ctx context.Context, sourcePath string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, source_name, content, sequence_index, embedding,
		       format_tag, start_line, end_line, token_estimate, language, created_at
		FROM chunks
		WHERE source_path = ?
		ORDER BY sequence_index
	`, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks for %s: %w", domain.ErrStorage, sourcePath, err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteBySource removes every chunk of one source.
func (s *Store) DeleteBySource(ctx context.Context, sourcePath string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("%w: deleting chunks for %s: %w", domain.ErrStorage, sourcePath, err)
	}
	return nil
}

// DeleteAll wipes the store.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks")
	if err != nil {
		return fmt.Errorf("%w: wiping chunks: %w", domain.ErrStorage, err)
	}
	return nil
}

// Stats returns aggregate counts over the store.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT source_path), COUNT(*) FROM chunks
	`).Scan(&stats.DistinctSourceCount, &stats.TotalChunkCount)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("%w: counting chunks: %w", domain.ErrStorage, err)
	}
	return stats, nil
}

// scanChunks scans multiple chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var startLine, endLine sql.NullInt64
		var language sql.NullString
		var createdAt sql.NullTime

		if err := rows.Scan(&chunk.ID, &chunk.SourcePath, &chunk.SourceName,
			&chunk.Content, &chunk.SequenceIndex, &embeddingBlob,
			&chunk.Metadata.FormatTag, &startLine, &endLine,
			&chunk.Metadata.TokenEstimate, &language, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrStorage, err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunk.Metadata.StartLine = int(startLine.Int64)
		chunk.Metadata.EndLine = int(endLine.Int64)
		chunk.Metadata.Language = language.String
		if createdAt.Valid {
			chunk.CreatedAt = createdAt.Time
		}

		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrStorage, err)
	}

	return chunks, nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice
// for storage. Round trips are bit-exact.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
