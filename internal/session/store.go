// Package session is the durable key-value store for client session state:
// auth tokens, the persisted auth snapshot and the theme preference.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// Keys persisted by the web client.
const (
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyAuthStorage  = "auth-storage"
	KeyDarkMode     = "darkMode"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// ErrKeyNotFound is returned by Get for missing keys.
var ErrKeyNotFound = errors.New("session key not found")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite file at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}

// Tokens holds the persisted credential pair.
type Tokens struct {
	AuthToken    string
	RefreshToken string
}

func (s *Store) SaveTokens(ctx context.Context, t Tokens) error {
	if err := s.Set(ctx, KeyAuthToken, t.AuthToken); err != nil {
		return err
	}
	return s.Set(ctx, KeyRefreshToken, t.RefreshToken)
}

// LoadTokens returns the stored pair; missing entries are empty strings.
func (s *Store) LoadTokens(ctx context.Context) (Tokens, error) {
	var t Tokens
	var err error
	if t.AuthToken, err = s.getOptional(ctx, KeyAuthToken); err != nil {
		return Tokens{}, err
	}
	if t.RefreshToken, err = s.getOptional(ctx, KeyRefreshToken); err != nil {
		return Tokens{}, err
	}
	return t, nil
}

func (s *Store) ClearTokens(ctx context.Context) error {
	return s.Delete(ctx, KeyAuthToken, KeyRefreshToken)
}

// AuthSnapshot is the lightweight session UI state restored on reload.
type AuthSnapshot struct {
	User            json.RawMessage `json:"user"`
	IsAuthenticated bool            `json:"isAuthenticated"`
}

func (s *Store) SaveAuthSnapshot(ctx context.Context, snap AuthSnapshot) error {
	if len(snap.User) == 0 {
		snap.User = json.RawMessage("null")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding auth snapshot: %w", err)
	}
	return s.Set(ctx, KeyAuthStorage, string(b))
}

// LoadAuthSnapshot returns the stored snapshot, or a signed-out one.
func (s *Store) LoadAuthSnapshot(ctx context.Context) (AuthSnapshot, error) {
	raw, err := s.getOptional(ctx, KeyAuthStorage)
	if err != nil {
		return AuthSnapshot{}, err
	}
	snap := AuthSnapshot{User: json.RawMessage("null")}
	if raw == "" {
		return snap, nil
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return AuthSnapshot{}, fmt.Errorf("decoding auth snapshot: %w", err)
	}
	return snap, nil
}

// DarkMode returns the theme preference; unset means false.
func (s *Store) DarkMode(ctx context.Context) (bool, error) {
	raw, err := s.getOptional(ctx, KeyDarkMode)
	if err != nil || raw == "" {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return v, nil
}

func (s *Store) SetDarkMode(ctx context.Context, on bool) error {
	return s.Set(ctx, KeyDarkMode, strconv.FormatBool(on))
}

func (s *Store) getOptional(ctx context.Context, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}
