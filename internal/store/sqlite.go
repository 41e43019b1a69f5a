package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveModel(ctx context.Context, rec Record) (Record, error) {
	if err := validate(rec); err != nil {
		return Record{}, err
	}
	db, err := s.getDB()
	if err != nil {
		return Record{}, err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err = db.ExecContext(ctx, `
		INSERT INTO models (id, kind, name, schema_version, codec_version, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, name) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, rec.ID, string(rec.Kind), rec.Name, rec.SchemaVersion, rec.CodecVersion, []byte(rec.Payload), rec.UpdatedAt.UnixNano())
	if err != nil {
		return Record{}, err
	}

	saved, ok, err := s.GetModel(ctx, rec.Kind, rec.Name)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("model %s/%s missing after save", rec.Kind, rec.Name)
	}
	return saved, nil
}

func (s *SQLiteStore) GetModel(ctx context.Context, kind Kind, name string) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, kind, name, schema_version, codec_version, payload, updated_at
		FROM models WHERE kind = ? AND name = ?
	`, string(kind), name)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *SQLiteStore) ListModels(ctx context.Context, kind Kind) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, kind, name, schema_version, codec_version, payload, updated_at
		FROM models WHERE kind = ? ORDER BY name
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteModel(ctx context.Context, kind Kind, name string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM models WHERE kind = ? AND name = ?`, string(kind), name)
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		kind    string
		payload []byte
		updated int64
	)
	if err := row.Scan(&rec.ID, &kind, &rec.Name, &rec.SchemaVersion, &rec.CodecVersion, &payload, &updated); err != nil {
		return Record{}, err
	}
	rec.Kind = Kind(kind)
	rec.Payload = payload
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return rec, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(kind, name)
		);
	`)
	return err
}
