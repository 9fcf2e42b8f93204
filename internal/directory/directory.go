// Package directory is the persisted registry of events and their rosters.
package directory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventbot/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// ErrNotFound means enumeration ran past the last event, or an event ID does
// not exist. For enumeration this is the expected terminal state, shown to
// the user as "no more events".
var ErrNotFound = errors.New("event not found")

// Directory stores events, rosters and known workspace users in Postgres.
// Events are ordered by their monotonic event_id; a cursor of 0 starts
// enumeration from the beginning.
type Directory struct {
	pool *pgxpool.Pool
}

// New creates a connection pool and fails fast if the DB is unreachable.
func New(dbURL string) (*Directory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Directory{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (d *Directory) EnsureSchema() error {
	_, err := d.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (d *Directory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (d *Directory) Close() {
	d.pool.Close()
}

// CreateUser upserts a workspace member so rosters can render display names.
func (d *Directory) CreateUser(ctx context.Context, userID, name string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO slack_users(user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name
	`, userID, name)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateEvent persists a new event and a roster entry for its creator in a
// single transaction; both succeed or neither does.
func (d *Directory) CreateEvent(ctx context.Context, creatorID, description string, date time.Time, clock string) (int64, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO events(description, event_date, event_time, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING event_id
	`, description, date, clock, creatorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_roster(user_id, event_id) VALUES ($1, $2)
	`, creatorID, id)
	if err != nil {
		return 0, fmt.Errorf("insert creator roster entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Event returns the event with the given ID, or ErrNotFound.
func (d *Directory) Event(ctx context.Context, eventID int64) (models.Event, error) {
	return d.scanEvent(d.pool.QueryRow(ctx, `
		SELECT event_id, description, event_date, event_time, creator_id
		FROM events
		WHERE event_id = $1
	`, eventID))
}

// NextEvent returns the event immediately after afterID in event_id order;
// afterID 0 yields the first event.
func (d *Directory) NextEvent(ctx context.Context, afterID int64) (models.Event, error) {
	return d.scanEvent(d.pool.QueryRow(ctx, `
		SELECT event_id, description, event_date, event_time, creator_id
		FROM events
		WHERE event_id > $1
		ORDER BY event_id
		LIMIT 1
	`, afterID))
}

// NextEventForUser is NextEvent restricted to events whose roster contains
// the user.
func (d *Directory) NextEventForUser(ctx context.Context, userID string, afterID int64) (models.Event, error) {
	return d.scanEvent(d.pool.QueryRow(ctx, `
		SELECT e.event_id, e.description, e.event_date, e.event_time, e.creator_id
		FROM events e
		JOIN event_roster r ON r.event_id = e.event_id
		WHERE r.user_id = $1 AND e.event_id > $2
		ORDER BY e.event_id
		LIMIT 1
	`, userID, afterID))
}

func (d *Directory) scanEvent(row pgx.Row) (models.Event, error) {
	var ev models.Event
	err := row.Scan(&ev.ID, &ev.Description, &ev.Date, &ev.Time, &ev.CreatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("query event: %w", err)
	}
	return ev, nil
}

// Participants lists the roster with display names, ordered by name. Users
// never seen by onboarding fall back to their ID.
func (d *Directory) Participants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT r.user_id, COALESCE(u.name, r.user_id)
		FROM event_roster r
		LEFT JOIN slack_users u ON u.user_id = r.user_id
		WHERE r.event_id = $1
		ORDER BY 2
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var people []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read participants: %w", err)
	}
	return people, nil
}

// AddParticipant puts the user on the event's roster. Adding a user who is
// already present is a no-op; the return value reports whether the roster
// actually changed so callers can skip the reminder for duplicates.
func (d *Directory) AddParticipant(ctx context.Context, userID string, eventID int64) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		INSERT INTO event_roster(user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveParticipant takes the user off the event's roster. Removing an
// absent user is a no-op, reported by the return value.
func (d *Directory) RemoveParticipant(ctx context.Context, userID string, eventID int64) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM event_roster WHERE user_id = $1 AND event_id = $2
	`, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
