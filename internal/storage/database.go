package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Deck groups pairs into a study deck.
type Deck struct {
	ID        string
	Name      string
	SourceID  sql.NullString
	CreatedAt time.Time
}

// CreateDeck inserts a deck, or returns the existing one with the same name.
func (db *DB) CreateDeck(ctx context.Context, name string, sourceID string) (Deck, error) {
	if existing, err := db.FindDeckByName(ctx, name); err != nil {
		return Deck{}, err
	} else if existing != nil {
		return *existing, nil
	}

	d := Deck{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	if sourceID != "" {
		d.SourceID = sql.NullString{String: sourceID, Valid: true}
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO decks (id, name, source_id, created_at)
		VALUES (?, ?, ?, ?)
	`, d.ID, d.Name, d.SourceID, d.CreatedAt)
	if err != nil {
		return Deck{}, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	return d, nil
}

// FindDeckByName retrieves a deck by name, or nil when absent.
func (db *DB) FindDeckByName(ctx context.Context, name string) (*Deck, error) {
	var d Deck
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, source_id, created_at FROM decks WHERE name = ?
	`, name)
	if err := row.Scan(&d.ID, &d.Name, &d.SourceID, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find deck by name %s: %w", name, err)
	}
	return &d, nil
}

// ListDecks retrieves all decks.
func (db *DB) ListDecks(ctx context.Context) ([]Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, source_id, created_at FROM decks ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.SourceID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// InsertPair inserts a pair together with its AB and BA associations.
func (db *DB) InsertPair(ctx context.Context, p domain.Pair) (domain.Pair, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.Pair{}, fmt.Errorf("failed to begin insert for pair %s: %w", p.Hash, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pairs (id, deck_id, question, answer, hash)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.DeckID, p.Question, p.Answer, p.Hash)
	if err != nil {
		return domain.Pair{}, fmt.Errorf("failed to insert pair %s: %w", p.Hash, err)
	}

	for _, dir := range []domain.Direction{domain.DirectionAB, domain.DirectionBA} {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO associations (id, pair_id, direction, score, due_at, first_time)
			VALUES (?, ?, ?, NULL, NULL, 1)
		`, uuid.NewString(), p.ID, string(dir))
		if err != nil {
			return domain.Pair{}, fmt.Errorf("failed to insert %s association for pair %s: %w", dir, p.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Pair{}, fmt.Errorf("failed to commit pair %s: %w", p.Hash, err)
	}
	return p, nil
}

// FindPairByHash retrieves a pair by deck and content hash, or nil when absent.
func (db *DB) FindPairByHash(ctx context.Context, deckID, hash string) (*domain.Pair, error) {
	var p domain.Pair
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, deck_id, question, answer, hash
		FROM pairs WHERE deck_id = ? AND hash = ?
	`, deckID, hash)
	if err := row.Scan(&p.ID, &p.DeckID, &p.Question, &p.Answer, &p.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pair by hash %s: %w", hash, err)
	}
	return &p, nil
}

// PairsByDeck retrieves all pairs in a deck.
func (db *DB) PairsByDeck(ctx context.Context, deckID string) ([]domain.Pair, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, deck_id, question, answer, hash FROM pairs WHERE deck_id = ?
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pairs for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.ID, &p.DeckID, &p.Question, &p.Answer, &p.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan pair row for deck %s: %w", deckID, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// DeletePair removes a pair; its associations go with it.
func (db *DB) DeletePair(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM pairs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete pair %s: %w", id, err)
	}
	return nil
}

// SessionCards loads every association of a deck for one direction,
// with the pair text resolved into cue and response.
func (db *DB) SessionCards(ctx context.Context, deckID string, dir domain.Direction) ([]*domain.SessionCard, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT a.id, a.pair_id, a.direction, a.score, a.due_at, a.first_time,
		       p.question, p.answer
		FROM associations a
		JOIN pairs p ON p.id = a.pair_id
		WHERE p.deck_id = ? AND a.direction = ?
		ORDER BY p.rowid
	`, deckID, string(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to load associations for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []*domain.SessionCard
	for rows.Next() {
		var (
			c         domain.SessionCard
			direction string
			score     sql.NullInt64
			dueAt     sql.NullTime
			firstTime int
			question  string
			answer    string
		)
		if err := rows.Scan(&c.ID, &c.PairID, &direction, &score, &dueAt, &firstTime, &question, &answer); err != nil {
			return nil, fmt.Errorf("failed to scan association row for deck %s: %w", deckID, err)
		}
		c.Direction = domain.Direction(direction)
		c.Score = nullToScore(score)
		c.DueAt = nullToTime(dueAt)
		c.FirstTime = firstTime != 0
		c.DeckID = deckID
		if c.Direction == domain.DirectionBA {
			c.Cue, c.Response = answer, question
		} else {
			c.Cue, c.Response = question, answer
		}
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

// Association retrieves one association and its owning deck id.
// A nil association (without error) means the id no longer exists.
func (db *DB) Association(ctx context.Context, id string) (*domain.Association, string, error) {
	var (
		a         domain.Association
		direction string
		score     sql.NullInt64
		dueAt     sql.NullTime
		firstTime int
		deckID    string
	)
	row := db.conn.QueryRowContext(ctx, `
		SELECT a.id, a.pair_id, a.direction, a.score, a.due_at, a.first_time, p.deck_id
		FROM associations a
		JOIN pairs p ON p.id = a.pair_id
		WHERE a.id = ?
	`, id)
	if err := row.Scan(&a.ID, &a.PairID, &direction, &score, &dueAt, &firstTime, &deckID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to find association %s: %w", id, err)
	}
	a.Direction = domain.Direction(direction)
	a.Score = nullToScore(score)
	a.DueAt = nullToTime(dueAt)
	a.FirstTime = firstTime != 0
	return &a, deckID, nil
}

// UpdateAssociationState writes back the scheduling fields of one association.
func (db *DB) UpdateAssociationState(ctx context.Context, id string, score domain.Score, dueAt *time.Time, firstTime bool) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE associations
		SET score = ?, due_at = ?, first_time = ?
		WHERE id = ?
	`, scoreToNull(score), timeToNull(dueAt), boolToInt(firstTime), id)
	if err != nil {
		return fmt.Errorf("failed to update association state for %s: %w", id, err)
	}
	return nil
}

// Source represents an import origin, either a local path or a Git URL.
type Source struct {
	ID          string
	Path        string
	Type        string // "local" or "git"
	LastScanned sql.NullTime
}

// InsertSource inserts a new source and returns it.
func (db *DB) InsertSource(ctx context.Context, path, typ string) (Source, error) {
	s := Source{ID: uuid.NewString(), Path: path, Type: typ}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sources (id, path, type) VALUES (?, ?, ?)
	`, s.ID, s.Path, s.Type)
	if err != nil {
		return Source{}, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	return s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, path, type, last_scanned FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastScanned updates the last_scanned timestamp for a source.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID string) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`, time.Now().UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source %s: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source registration. Decks imported from it
// are kept; they just lose the source link.
func (db *DB) DeleteSource(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %s: %w", id, err)
	}
	return nil
}

func nullToScore(n sql.NullInt64) domain.Score {
	if !n.Valid {
		return domain.Unset()
	}
	return domain.NewScore(int(n.Int64))
}

func scoreToNull(s domain.Score) sql.NullInt64 {
	if !s.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(s.Value), Valid: true}
}

func nullToTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
