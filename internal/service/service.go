package service

import (
	"context"
	"io"

	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/pkg/queue"
)

// CatalogService is the storefront read surface: an explicitly fetched
// snapshot of the collection plus a point read.
type CatalogService interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
}

// InventoryService owns the seat counters and the trending rank.
type InventoryService interface {
	BookSeat(ctx context.Context, id string) (*entity.Event, error)
	SetTrending(ctx context.Context, id string, rank int) error
	ClearTrending(ctx context.Context, id string) error
}

// AdminService orchestrates event curation: create, edit, delete and the
// admin listing.
type AdminService interface {
	CreateEvent(ctx context.Context, in *CreateEventInput) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, in *UpdateEventInput) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, search string) ([]*entity.Event, error)
}

// SnapshotCache holds the catalog listing between loads. Any error on Get is
// treated as a miss; the services degrade to the repository.
type SnapshotCache interface {
	Get(ctx context.Context) ([]*entity.Event, error)
	Set(ctx context.Context, events []*entity.Event) error
	Invalidate(ctx context.Context) error
}

// TaskPublisher enqueues deferred work (orphaned upload cleanup).
type TaskPublisher interface {
	Publish(ctx context.Context, task *queue.Task) error
}

// ImageProcessor normalizes an uploaded blob before it is stored.
type ImageProcessor interface {
	Normalize(data io.Reader) (io.Reader, error)
}

// CreateEventInput carries the admin form fields. Numeric and date fields
// arrive as strings from the multipart boundary and are parsed during
// validation.
type CreateEventInput struct {
	Title       string
	Category    string
	Description string
	Location    string
	StartDate   string
	EndDate     string
	TotalSeats  string
	Trending    string

	Image     io.Reader
	ImageName string
}

// UpdateEventInput carries a partial edit; nil fields keep their stored
// value.
type UpdateEventInput struct {
	Title       *string
	Category    *string
	Description *string
	Location    *string
	StartDate   *string
	EndDate     *string
	TotalSeats  *string

	Image     io.Reader
	ImageName string
}
