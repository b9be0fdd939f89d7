// Package sqlite provides a SQLite-backed implementation of the pick journal port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// Adapter implements the pick journal for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.PickJournal = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open db: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Record inserts one journal entry.
func (a *Adapter) Record(ctx context.Context, e domain.PickEntry) error {
	genres, err := json.Marshal(e.Intent.Genres)
	if err != nil {
		return fmt.Errorf("sqlite: encode genres: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO picks (
			id, created_at, condition, intent_source,
			mood, genres, energy, valence, danceability, tempo,
			track_uri, track_url, track_name, track_artist,
			hard_fallback, played, playback_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Condition, e.IntentSource,
		e.Intent.Mood, string(genres), e.Intent.TargetEnergy, e.Intent.TargetValence,
		e.Intent.TargetDanceability, e.Intent.TargetTempo,
		e.Track.URI, e.Track.URL, e.Track.Name, e.Track.Artist,
		e.HardFallback, e.Played, e.PlaybackError,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to insert pick %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (a *Adapter) Recent(ctx context.Context, limit int) ([]domain.PickEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)

	rows, err := a.db.QueryContext(ctx, selectPicks+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query picks: %w", err)
	}
	defer rows.Close()

	entries := []domain.PickEntry{}
	for rows.Next() {
		e, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate picks: %w", err)
	}
	return entries, nil
}

// Get loads one entry by id.
func (a *Adapter) Get(ctx context.Context, id string) (domain.PickEntry, error) {
	row := a.db.QueryRowContext(ctx, selectPicks+` WHERE id = ?`, id)
	e, err := scanPick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PickEntry{}, domain.ErrNotFound
	}
	return e, err
}

const selectPicks = `
	SELECT id, created_at, condition, intent_source,
		mood, genres, energy, valence, danceability, tempo,
		track_uri, track_url, track_name, track_artist,
		hard_fallback, played, IFNULL(playback_error, '')
	FROM picks`

type scanner interface {
	Scan(dest ...any) error
}

func scanPick(s scanner) (domain.PickEntry, error) {
	var (
		e         domain.PickEntry
		createdAt string
		genres    string
	)
	err := s.Scan(
		&e.ID, &createdAt, &e.Condition, &e.IntentSource,
		&e.Intent.Mood, &genres, &e.Intent.TargetEnergy, &e.Intent.TargetValence,
		&e.Intent.TargetDanceability, &e.Intent.TargetTempo,
		&e.Track.URI, &e.Track.URL, &e.Track.Name, &e.Track.Artist,
		&e.HardFallback, &e.Played, &e.PlaybackError,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PickEntry{}, err
	}
	if err != nil {
		return domain.PickEntry{}, fmt.Errorf("sqlite: failed to scan pick: %w", err)
	}

	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.PickEntry{}, fmt.Errorf("sqlite: bad created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(genres), &e.Intent.Genres); err != nil {
		return domain.PickEntry{}, fmt.Errorf("sqlite: decode genres: %w", err)
	}
	return e, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS picks (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		condition TEXT NOT NULL,
		intent_source TEXT NOT NULL,
		mood TEXT NOT NULL,
		genres TEXT NOT NULL,
		energy REAL NOT NULL,
		valence REAL NOT NULL,
		danceability REAL NOT NULL,
		tempo INTEGER NOT NULL,
		track_uri TEXT NOT NULL,
		track_url TEXT NOT NULL,
		track_name TEXT NOT NULL,
		track_artist TEXT NOT NULL,
		hard_fallback BOOLEAN NOT NULL DEFAULT 0,
		played BOOLEAN NOT NULL DEFAULT 0,
		playback_error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_picks_created_at ON picks(created_at);
	`
	_, err := a.db.Exec(query)
	return err
}
