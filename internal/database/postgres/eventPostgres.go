package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/google/uuid"
)

const eventColumns = `id, title, category, description, location, image,
		start_date, end_date, total_seats, remaining_seats, trending, created_at`

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, title, category, description, location, image,
			start_date, end_date, total_seats, remaining_seats, trending, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	event.ID = uuid.New().String()
	return r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Category,
		event.Description,
		event.Location,
		event.Image,
		event.StartDate,
		event.EndDate,
		event.TotalSeats,
		event.RemainingSeats,
		event.Trending,
		time.Now(),
	).Scan(&event.CreatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, text string) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE title ILIKE $1 OR location ILIKE $1
		ORDER BY created_at DESC
	`

	searchPattern := "%" + text + "%"
	rows, err := r.db.QueryContext(ctx, query, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, category = $2, description = $3, location = $4, image = $5,
			start_date = $6, end_date = $7, total_seats = $8, remaining_seats = $9,
			trending = $10
		WHERE id = $11
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Category,
		event.Description,
		event.Location,
		event.Image,
		event.StartDate,
		event.EndDate,
		event.TotalSeats,
		event.RemainingSeats,
		event.Trending,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

// DecrementSeat performs the conditional seat decrement in a single
// statement, so concurrent bookings can never drive the counter below zero.
func (r *eventRepository) DecrementSeat(ctx context.Context, id string) (*entity.Event, error) {
	query := `
		UPDATE events
		SET remaining_seats = remaining_seats - 1
		WHERE id = $1 AND remaining_seats > 0
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement seats: %w", err)
	}

	// No row matched: either the event is gone or it is sold out.
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, checkQuery, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check event existence: %w", err)
	}
	if !exists {
		return nil, entity.ErrEventNotFound
	}
	return nil, entity.ErrOutOfCapacity
}

func (r *eventRepository) UpdateTrending(ctx context.Context, id string, rank int) error {
	query := `UPDATE events SET trending = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, rank, id)
	if err != nil {
		return fmt.Errorf("failed to update trending rank: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var (
		event              entity.Event
		startDate, endDate sql.NullTime
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Category,
		&event.Description,
		&event.Location,
		&event.Image,
		&startDate,
		&endDate,
		&event.TotalSeats,
		&event.RemainingSeats,
		&event.Trending,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		event.StartDate = entity.NewEventDate(startDate.Time)
	}
	if endDate.Valid {
		event.EndDate = entity.NewEventDate(endDate.Time)
	}
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]*entity.Event, error) {
	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}
