// Package storage provides SQLite-based persistence for match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// PlayerResult is one fighter's final line in a finished match.
type PlayerResult struct {
	Port       int
	Character  string
	Team       int
	StocksLeft int
	Damage     float64
	Won        bool
}

// MatchRecord is the persisted outcome of one match.
type MatchRecord struct {
	ID            int64
	Stage         string
	Seed          int64
	TickRate      int
	DurationTicks int
	WinnerPort    int    // -1 for a draw
	EndReason     string // "stocks", "time", "aborted"
	Digest        string // final state hash, hex
	ReplayPath    string // empty when the match was not recorded
	Players       []PlayerResult
	CreatedAt     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stage TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick_rate INTEGER NOT NULL,
			duration_ticks INTEGER NOT NULL,
			winner_port INTEGER NOT NULL,
			end_reason TEXT NOT NULL,
			digest TEXT NOT NULL,
			replay_path TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_stage ON matches(stage);
		CREATE INDEX IF NOT EXISTS idx_matches_recent ON matches(created_at DESC);

		CREATE TABLE IF NOT EXISTS match_players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			port INTEGER NOT NULL,
			character TEXT NOT NULL,
			team INTEGER NOT NULL,
			stocks_left INTEGER NOT NULL,
			damage REAL NOT NULL,
			won INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_match ON match_players(match_id);
		CREATE INDEX IF NOT EXISTS idx_match_players_character ON match_players(character);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match and its per-player lines atomically.
// Returns the ID of the inserted match row.
func (s *Store) SaveMatch(rec MatchRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO matches
		 (stage, seed, tick_rate, duration_ticks, winner_port, end_reason, digest, replay_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Stage, rec.Seed, rec.TickRate, rec.DurationTicks,
		rec.WinnerPort, rec.EndReason, rec.Digest, rec.ReplayPath,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, p := range rec.Players {
		if _, err := tx.Exec(
			`INSERT INTO match_players
			 (match_id, port, character, team, stocks_left, damage, won)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, p.Port, p.Character, p.Team, p.StocksLeft, p.Damage, p.Won,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save player line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

// MatchByID retrieves one match with its player lines, or nil when absent.
func (s *Store) MatchByID(id int64) (*MatchRecord, error) {
	var rec MatchRecord
	var createdAt any
	err := s.db.QueryRow(
		`SELECT id, stage, seed, tick_rate, duration_ticks, winner_port, end_reason, digest, replay_path, created_at
		 FROM matches WHERE id = ?`,
		id,
	).Scan(
		&rec.ID, &rec.Stage, &rec.Seed, &rec.TickRate, &rec.DurationTicks,
		&rec.WinnerPort, &rec.EndReason, &rec.Digest, &rec.ReplayPath, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)

	if rec.Players, err = s.playersFor(rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, stage, seed, tick_rate, duration_ticks, winner_port, end_reason, digest, replay_path, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var recs []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var createdAt any
		if err := rows.Scan(
			&rec.ID, &rec.Stage, &rec.Seed, &rec.TickRate, &rec.DurationTicks,
			&rec.WinnerPort, &rec.EndReason, &rec.Digest, &rec.ReplayPath, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for i := range recs {
		if recs[i].Players, err = s.playersFor(recs[i].ID); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *Store) playersFor(matchID int64) ([]PlayerResult, error) {
	rows, err := s.db.Query(
		`SELECT port, character, team, stocks_left, damage, won
		 FROM match_players
		 WHERE match_id = ?
		 ORDER BY port`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerResult
	for rows.Next() {
		var p PlayerResult
		if err := rows.Scan(&p.Port, &p.Character, &p.Team, &p.StocksLeft, &p.Damage, &p.Won); err != nil {
			return nil, fmt.Errorf("storage: cannot scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// CharacterStats contains aggregated results for one character.
type CharacterStats struct {
	Character  string
	Matches    int
	Wins       int
	AvgDamage  float64
	LastPlayed time.Time
}

// GetCharacterStats retrieves aggregated statistics for a character.
// A character with no recorded matches yields zero counts.
func (s *Store) GetCharacterStats(character string) (*CharacterStats, error) {
	stats := &CharacterStats{Character: character}
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(won), 0), COALESCE(AVG(damage), 0)
		 FROM match_players WHERE character = ?`,
		character,
	).Scan(&stats.Matches, &stats.Wins, &stats.AvgDamage)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get character stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT m.created_at
		 FROM matches m JOIN match_players p ON p.match_id = m.id
		 WHERE p.character = ?
		 ORDER BY m.created_at DESC LIMIT 1`,
		character,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}
	return stats, nil
}

// GetAllCharacterStats retrieves statistics for every character that has
// appeared in a recorded match.
func (s *Store) GetAllCharacterStats() (map[string]*CharacterStats, error) {
	rows, err := s.db.Query(
		`SELECT character, COUNT(*), SUM(won), AVG(damage)
		 FROM match_players
		 GROUP BY character`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get character stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*CharacterStats)
	for rows.Next() {
		var cs CharacterStats
		if err := rows.Scan(&cs.Character, &cs.Matches, &cs.Wins, &cs.AvgDamage); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats[cs.Character] = &cs
	}
	return stats, rows.Err()
}

// ClearMatches deletes every recorded match and its player lines.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM match_players"); err != nil {
		return fmt.Errorf("storage: cannot clear player lines: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// parseTime handles the driver returning DATETIME as either time.Time or
// its SQLite text form.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
