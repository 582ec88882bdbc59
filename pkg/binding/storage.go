// Package binding bridges in-memory collections to an external writable
// location and schedules autosave. A Binding is Unbound until attached to
// one of three Storage variants: a SQLite-backed key-value store, an OS
// file with atomic writes, or a host-provided read/write command pair.
// The variant is resolved once at startup and injected; nothing probes the
// environment after that.
package binding

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Kind identifies the storage variant behind a binding.
type Kind string

const (
	// KindKV is a key-value document store persisted in SQLite.
	KindKV Kind = "kv"
	// KindFile is an OS file handle with atomic write-then-rename.
	KindFile Kind = "file"
	// KindHost is a host-application-provided read/write command pair.
	KindHost Kind = "host"
)

// ErrNoDocument means a read found no stored document yet. Callers treat
// this as an empty collection, not a failure.
var ErrNoDocument = errors.New("no document stored")

// Storage is the byte-oriented read/write surface a Binding writes to.
// Write replaces the whole document; there are no incremental writes.
type Storage interface {
	Kind() Kind
	// Description is the human-readable location shown in the status line.
	Description() string
	Read() ([]byte, error)
	Write(content []byte) error
}

// Pathed is implemented by storage variants backed by a watchable path.
type Pathed interface {
	Path() string
}

// --- SQLite key-value variant ---

// KVStore is a SQLite database holding named documents. One store serves
// several bindings (formulas and templates each get their own key).
type KVStore struct {
	db   *sql.DB
	path string
}

// OpenKVStore opens (creating if needed) the document store at path.
func OpenKVStore(path string) (*KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open document store: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing document store: %w", err)
	}
	return &KVStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Document returns the Storage bound to one key in the store.
func (s *KVStore) Document(key string) Storage {
	return &kvDocument{store: s, key: key}
}

type kvDocument struct {
	store *KVStore
	key   string
}

func (d *kvDocument) Kind() Kind { return KindKV }

func (d *kvDocument) Description() string {
	return fmt.Sprintf("%s#%s", d.store.path, d.key)
}

func (d *kvDocument) Read() ([]byte, error) {
	var content string
	err := d.store.db.QueryRow(
		"SELECT content FROM documents WHERE key = ?", d.key,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", d.key, err)
	}
	return []byte(content), nil
}

func (d *kvDocument) Write(content []byte) error {
	_, err := d.store.db.Exec(
		`INSERT INTO documents (key, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		d.key, string(content), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing document %q: %w", d.key, err)
	}
	return nil
}

// --- OS file variant ---

// FileStorage reads and writes a single file. Writes go to a temp file in
// the same directory followed by a rename, so a crash mid-write never
// leaves a truncated document behind.
type FileStorage struct {
	path string
}

// NewFileStorage creates file-backed storage for path.
func NewFileStorage(path string) (*FileStorage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &FileStorage{path: abs}, nil
}

func (f *FileStorage) Kind() Kind          { return KindFile }
func (f *FileStorage) Description() string { return f.path }
func (f *FileStorage) Path() string        { return f.path }

func (f *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileStorage) Write(content []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".fm-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// --- Host command variant ---

// HostCommands is the command pair (plus file pickers) a desktop host
// exposes. Pickers return an empty path when the user cancels.
type HostCommands struct {
	ReadFile  func(path string) (string, error)
	WriteFile func(path, content string) error
	// ChooseOpen and ChooseSave present the host's file dialogs.
	ChooseOpen func() (string, error)
	ChooseSave func() (string, error)
}

// HostStorage routes reads and writes through host commands for a path
// chosen through the host's own dialogs.
type HostStorage struct {
	cmds HostCommands
	path string
}

// NewHostStorage creates host-backed storage for an already-chosen path.
func NewHostStorage(cmds HostCommands, path string) (*HostStorage, error) {
	if cmds.ReadFile == nil || cmds.WriteFile == nil {
		return nil, errors.New("host commands must provide both read and write")
	}
	if path == "" {
		return nil, errors.New("host storage requires a path")
	}
	return &HostStorage{cmds: cmds, path: path}, nil
}

func (h *HostStorage) Kind() Kind          { return KindHost }
func (h *HostStorage) Description() string { return h.path }
func (h *HostStorage) Path() string        { return h.path }

func (h *HostStorage) Read() ([]byte, error) {
	content, err := h.cmds.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("host read %s: %w", h.path, err)
	}
	return []byte(content), nil
}

func (h *HostStorage) Write(content []byte) error {
	if err := h.cmds.WriteFile(h.path, string(content)); err != nil {
		return fmt.Errorf("host write %s: %w", h.path, err)
	}
	return nil
}
