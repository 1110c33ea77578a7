// Package store is the durability adapter: it keeps the serialized session
// (and the pending-save marker) in a client-local SQLite database so an
// in-progress workout survives restarts. Every write is a full-document
// overwrite of a single row; a document that fails to load or parse is
// treated as "no session" rather than an error.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	keySession     = "active_session"
	keyPendingSave = "pending_save"
)

// Store persists client-local state.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the state database at dir/liftlog.db and applies
// pending schema migrations.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "liftlog.db")
	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func runMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SaveSession overwrites the stored session document. A nil session clears
// the row, so the stored state always mirrors the in-memory truth.
func (s *Store) SaveSession(sess *session.Session) error {
	if sess == nil {
		return s.ClearSession()
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO client_state (key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		keySession, payload,
	)
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, or nil if none exists. Read and
// parse failures also yield nil: the store is a convenience cache, and a
// document this process cannot understand is a lost session, not an error
// the caller should see.
func (s *Store) LoadSession() (*session.Session, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM client_state WHERE key = ?`, keySession).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.log.Warn("session load failed, treating as no session", "error", err)
		return nil, nil
	}

	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		s.log.Warn("stored session unparseable, treating as no session", "error", err)
		return nil, nil
	}
	if sess.StartedAt.IsZero() || len(sess.Exercises) == 0 {
		s.log.Warn("stored session structurally invalid, treating as no session")
		return nil, nil
	}
	return &sess, nil
}

// ClearSession removes the stored session document.
func (s *Store) ClearSession() error {
	if _, err := s.db.Exec(`DELETE FROM client_state WHERE key = ?`, keySession); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// SetPendingSave records that a save was deferred through the sign-in
// detour and should auto-resume once authentication completes.
func (s *Store) SetPendingSave() error {
	_, err := s.db.Exec(
		`INSERT INTO client_state (key, payload, updated_at) VALUES (?, '1', CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET payload = '1', updated_at = CURRENT_TIMESTAMP`,
		keyPendingSave,
	)
	if err != nil {
		return fmt.Errorf("setting pending-save marker: %w", err)
	}
	return nil
}

// PendingSave reports whether the marker is set without consuming it.
func (s *Store) PendingSave() (bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM client_state WHERE key = ?`, keyPendingSave).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading pending-save marker: %w", err)
	}
	return true, nil
}

// TakePendingSave consumes the marker: it reports whether it was set and
// clears it in the same transaction, so an auto-resumed save runs at most
// once no matter how the process gets here.
func (s *Store) TakePendingSave() (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("taking pending-save marker: %w", err)
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRow(`SELECT payload FROM client_state WHERE key = ?`, keyPendingSave).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("taking pending-save marker: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM client_state WHERE key = ?`, keyPendingSave); err != nil {
		return false, fmt.Errorf("clearing pending-save marker: %w", err)
	}
	return true, tx.Commit()
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}
