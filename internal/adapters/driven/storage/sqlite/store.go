package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store for one named collection.
type Store struct {
	// mu serialises mutations and gives queries a consistent snapshot.
	mu         sync.RWMutex
	db         *sql.DB
	path       string
	collection string

	// tempDir is removed on Close for stores made by NewTempStore.
	tempDir string
}

// NewStore opens (creating if needed) the store in dataDir for collection.
// Any failure to create or open the database is domain.ErrStoreUnavailable.
func NewStore(dataDir, collection string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: no data directory given", domain.ErrStoreUnavailable)
	}
	if collection == "" {
		collection = domain.DefaultCollectionName
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStoreUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: collection,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStoreUnavailable, err)
	}

	return s, nil
}

// NewTempStore opens an ephemeral store in a fresh temporary directory.
// The directory and everything in it is removed on Close.
func NewTempStore(collection string) (*Store, error) {
	dir, err := os.MkdirTemp("", "ragcore-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temporary directory: %w", domain.ErrStoreUnavailable, err)
	}

	s, err := NewStore(dir, collection)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	s.tempDir = dir
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); rmErr != nil && err == nil {
			err = fmt.Errorf("removing temporary store: %w", rmErr)
		}
	}
	return err
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

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// unavailable classifies a database failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadModel returns the collection's recorded model and record count.
func (s *Store) loadModel(ctx context.Context, q queryer) (*domain.EmbeddingModel, int, error) {
	var count int
	if err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", s.collection).Scan(&count); err != nil {
		return nil, 0, unavailable("counting records", err)
	}

	var model domain.EmbeddingModel
	err := q.QueryRowContext(ctx,
		"SELECT model_name, dimensions FROM collection_meta WHERE collection = ?", s.collection,
	).Scan(&model.Name, &model.Dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, count, nil
	}
	if err != nil {
		return nil, 0, unavailable("loading collection model", err)
	}
	return &model, count, nil
}

func checkModel(recorded *domain.EmbeddingModel, count int, model domain.EmbeddingModel) error {
	if recorded != nil && count > 0 && !recorded.Matches(model) {
		return fmt.Errorf("%w: collection uses %s, got %s", domain.ErrModelMismatch, recorded, model)
	}
	return nil
}

// Add persists records in one transaction, ignoring known content hashes.
func (s *Store) Add(ctx context.Context, model domain.EmbeddingModel, records []domain.EmbeddingRecord) (domain.AddResult, error) {
	var res domain.AddResult

	for _, r := range records {
		if len(r.Vector) != model.Dimensions {
			return res, fmt.Errorf("%w: record %s has %d dimensions, model %s",
				domain.ErrInvalidInput, r.ID, len(r.Vector), model)
		}
	}
	if len(records) == 0 {
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	recorded, count, err := s.loadModel(ctx, tx)
	if err != nil {
		return res, err
	}
	if err := checkModel(recorded, count, model); err != nil {
		return res, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, collection, content_hash, text, source, file_type,
			file_size, chunk_index, chunk_size, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, content_hash) DO NOTHING
	`)
	if err != nil {
		return res, unavailable("preparing statement", err)
	}
	defer stmt.Close()

	for _, r := range records {
		m := r.Chunk.Metadata
		result, err := stmt.ExecContext(ctx, r.ID, s.collection, m.ContentHash, r.Chunk.Text,
			m.Source, string(m.FileType), m.FileSize, m.ChunkIndex, m.ChunkSize,
			float32SliceToBytes(r.Vector))
		if err != nil {
			return domain.AddResult{}, unavailable("saving record", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			res.Duplicates++
			continue
		}
		res.Added++
	}

	if res.Added > 0 {
		// The first add to an empty collection records its model
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collection_meta (collection, model_name, dimensions)
			VALUES (?, ?, ?)
			ON CONFLICT(collection) DO UPDATE SET
				model_name = excluded.model_name,
				dimensions = excluded.dimensions
		`, s.collection, model.Name, model.Dimensions); err != nil {
			return domain.AddResult{}, unavailable("saving collection model", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.AddResult{}, unavailable("committing transaction", err)
	}
	return res, nil
}

// Query ranks the collection's filtered records against vector.
func (s *Store) Query(
	ctx context.Context,
	model domain.EmbeddingModel,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorded, count, err := s.loadModel(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if count == 0 || topK <= 0 {
		return []domain.QueryResult{}, nil
	}
	if err := checkModel(recorded, count, model); err != nil {
		return nil, err
	}

	query := `SELECT text, source, file_type, file_size, chunk_index, chunk_size, content_hash, embedding
		FROM records WHERE collection = ?`
	args := []any{s.collection}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.FileType != "" {
		query += " AND file_type = ?"
		args = append(args, string(filter.FileType))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("querying records", err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		var (
			r        domain.QueryResult
			fileType string
			blob     []byte
		)
		if err := rows.Scan(&r.Text, &r.Metadata.Source, &fileType, &r.Metadata.FileSize,
			&r.Metadata.ChunkIndex, &r.Metadata.ChunkSize, &r.Metadata.ContentHash, &blob); err != nil {
			return nil, unavailable("scanning record", err)
		}
		r.Metadata.FileType = domain.FileType(fileType)
		r.Distance = ranking.CosineDistance(vector, bytesToFloat32Slice(blob))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating records", err)
	}

	if results == nil {
		return []domain.QueryResult{}, nil
	}
	return ranking.Rank(results, topK), nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", s.collection).Scan(&count); err != nil {
		return 0, unavailable("counting records", err)
	}
	return count, nil
}

// Hashes returns the collection's content hash to record ID index.
func (s *Store) Hashes(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT content_hash, id FROM records WHERE collection = ?", s.collection)
	if err != nil {
		return nil, unavailable("loading hash index", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var hash, id string
		if err := rows.Scan(&hash, &id); err != nil {
			return nil, unavailable("scanning hash", err)
		}
		hashes[hash] = id
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating hashes", err)
	}
	return hashes, nil
}

// Clear deletes the collection's records and recorded model.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.collection); err != nil {
		return unavailable("deleting records", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collection_meta WHERE collection = ?", s.collection); err != nil {
		return unavailable("deleting collection model", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

// Info describes the collection.
func (s *Store) Info(ctx context.Context) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorded, count, err := s.loadModel(ctx, s.db)
	if err != nil {
		return domain.CollectionInfo{}, err
	}

	info := domain.CollectionInfo{
		Name:     s.collection,
		Backend:  domain.StoreBackendSQLite.String(),
		Location: s.path,
		Count:    count,
	}
	if recorded != nil {
		info.EmbeddingModel = *recorded
	}
	return info, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
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
