package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ai-stream/internal/schema"
)

var ErrNotFound = errors.New("record not found")

type Kind string

const (
	KindFunction  Kind = "functions"
	KindAssistant Kind = "assistants"
	KindPrompt    Kind = "prompts"
)

// table whitelists the kind before it is spliced into SQL.
func (k Kind) table() (string, error) {
	switch k {
	case KindFunction, KindAssistant, KindPrompt:
		return string(k), nil
	}
	return "", fmt.Errorf("unknown record kind %q", string(k))
}

type Record struct {
	ID        string
	Name      string
	Payload   []byte
	UpdatedAt int64
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS functions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assistants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Put(kind Kind, id, name string, payload []byte) error {
	table, err := kind.table()
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("put %s: empty id", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(fmt.Sprintf(`
		INSERT INTO %s(id, name, payload, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`, table), id, name, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) Get(kind Kind, id string) (Record, error) {
	table, err := kind.table()
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec Record
	var payload string
	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT id, name, payload, updated_at FROM %s WHERE id = ?
	`, table), id).Scan(&rec.ID, &rec.Name, &payload, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get %s %s: %w", table, id, err)
	}
	rec.Payload = []byte(payload)
	return rec, nil
}

func (s *Store) Delete(kind Kind, id string) error {
	table, err := kind.table()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) Names(kind Kind) (map[string]string, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(fmt.Sprintf(`SELECT id, name FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s names: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan %s name row: %w", table, err)
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s names: %w", table, err)
	}
	return out, nil
}

func (s *Store) List(kind Kind) ([]Record, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT id, name, payload, updated_at FROM %s ORDER BY name, id
	`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Name, &payload, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", table, err)
	}
	return out, nil
}

// functionRecord is the persisted payload: the ids of the assistants that
// reference the function, plus the built OpenAI schema as the record's
// value. Anything the build drops (parameter rows without a name, editor
// ids) is gone after a reload.
type functionRecord struct {
	UsedBy []string        `json:"used_by,omitempty"`
	Value  json.RawMessage `json:"value"`
}

func (s *Store) PutFunction(fn schema.Function) error {
	_, text, err := fn.BuildSchema()
	if err != nil {
		return fmt.Errorf("build schema %s: %w", fn.ID, err)
	}
	payload, err := json.Marshal(functionRecord{UsedBy: fn.UsedBy, Value: json.RawMessage(text)})
	if err != nil {
		return fmt.Errorf("encode function %s: %w", fn.ID, err)
	}
	return s.Put(KindFunction, fn.ID, fn.SchemaName, payload)
}

// DecodeFunction rebuilds the editable function from a stored record,
// assigning fresh parameter ids.
func DecodeFunction(rec Record) (schema.Function, error) {
	var stored functionRecord
	if err := json.Unmarshal(rec.Payload, &stored); err != nil {
		return schema.Function{}, fmt.Errorf("decode function %s: %w", rec.ID, err)
	}
	fn, err := schema.FromOpenAI(rec.Name, stored.Value)
	if err != nil {
		return schema.Function{}, fmt.Errorf("decode function %s: %w", rec.ID, err)
	}
	fn.ID = rec.ID
	fn.UsedBy = stored.UsedBy
	return fn, nil
}

func (s *Store) GetFunction(id string) (schema.Function, error) {
	rec, err := s.Get(KindFunction, id)
	if err != nil {
		return schema.Function{}, err
	}
	return DecodeFunction(rec)
}

func (s *Store) DeleteFunction(id string) error {
	return s.Delete(KindFunction, id)
}
