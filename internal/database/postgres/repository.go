package repository

import (
	"context"

	"github.com/dkolesni/eventboard/internal/entity"
)

// EventRepository is the persistence gateway for the event collection. It is
// the sole owner of event identity and durable state.
type EventRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	GetAll(ctx context.Context) ([]*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id string) error

	// Query operations
	Search(ctx context.Context, text string) ([]*entity.Event, error)

	// Inventory operations
	DecrementSeat(ctx context.Context, id string) (*entity.Event, error)
	UpdateTrending(ctx context.Context, id string, rank int) error
}
