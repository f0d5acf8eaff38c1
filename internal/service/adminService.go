package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	repository "github.com/dkolesni/eventboard/internal/database/postgres"
	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/pkg/objectstore"
	"github.com/dkolesni/eventboard/pkg/queue"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type adminService struct {
	eventRepo repository.EventRepository
	store     objectstore.Store
	processor ImageProcessor
	tasks     TaskPublisher
	cache     SnapshotCache
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	eventRepo repository.EventRepository,
	store objectstore.Store,
	processor ImageProcessor,
	tasks TaskPublisher,
	cache SnapshotCache,
) AdminService {
	return &adminService{
		eventRepo: eventRepo,
		store:     store,
		processor: processor,
		tasks:     tasks,
		cache:     cache,
	}
}

// CreateEvent validates the form, uploads the image when one is attached and
// persists the event. Validation failures never reach a gateway. Upload and
// insert are two sequential calls; an insert failure after a successful
// upload queues the orphaned object for deletion instead of wrapping both in
// a transaction.
func (s *adminService) CreateEvent(ctx context.Context, in *CreateEventInput) (*entity.Event, error) {
	event, err := in.validate()
	if err != nil {
		return nil, err
	}

	uploadedKey := ""
	if in.Image != nil {
		url, key, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		event.Image = url
		uploadedKey = key
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if uploadedKey != "" {
			s.queueObjectCleanup(ctx, uploadedKey)
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
		"title":    event.Title,
	}).Info("Event created")

	s.invalidateCatalog(ctx)
	return event, nil
}

// UpdateEvent merges the supplied fields over the stored event. A changed
// total moves the remaining count by the same delta, clamped to the new
// bounds.
func (s *adminService) UpdateEvent(ctx context.Context, id string, in *UpdateEventInput) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := in.apply(event); err != nil {
		return nil, err
	}

	uploadedKey := ""
	previousImage := ""
	if in.Image != nil {
		url, key, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		previousImage = event.Image
		event.Image = url
		uploadedKey = key
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if uploadedKey != "" {
			s.queueObjectCleanup(ctx, uploadedKey)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if previousImage != "" {
		if key, ok := s.store.KeyFromURL(previousImage); ok {
			s.queueObjectCleanup(ctx, key)
		}
	}

	s.invalidateCatalog(ctx)
	return event, nil
}

// DeleteEvent removes the event permanently. The stored image object, when
// served from our own store, is queued for deletion.
func (s *adminService) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithField("event_id", id).Info("Event deleted")

	if event.Image != "" {
		if key, ok := s.store.KeyFromURL(event.Image); ok {
			s.queueObjectCleanup(ctx, key)
		}
	}

	s.invalidateCatalog(ctx)
	return nil
}

// ListEvents is the admin listing: title or location substring match,
// case-insensitive, newest first.
func (s *adminService) ListEvents(ctx context.Context, search string) ([]*entity.Event, error) {
	events, err := s.eventRepo.Search(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *adminService) uploadImage(ctx context.Context, image io.Reader) (string, string, error) {
	normalized, err := s.processor.Normalize(image)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", entity.ErrUploadFailed, err)
	}

	key := uuid.New().String() + ".jpg"
	url, err := s.store.Upload(ctx, key, normalized)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", entity.ErrUploadFailed, err)
	}
	return url, key, nil
}

// queueObjectCleanup schedules deletion of an object the catalog no longer
// references. Best effort: a publish failure only leaves an orphan blob.
func (s *adminService) queueObjectCleanup(ctx context.Context, key string) {
	if s.tasks == nil {
		logrus.Warnf("No task queue configured, orphaned object %s left in store", key)
		return
	}

	task := &queue.Task{
		ID:   uuid.New().String(),
		Type: queue.TaskTypeDeleteObject,
		Data: map[string]interface{}{"key": key},
	}
	if err := s.tasks.Publish(ctx, task); err != nil {
		logrus.Errorf("Failed to queue cleanup of object %s: %v", key, err)
	}
}

func (s *adminService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logrus.Warnf("Failed to invalidate catalog cache: %v", err)
	}
}

func (in *CreateEventInput) validate() (*entity.Event, error) {
	var invalid []string

	if strings.TrimSpace(in.Title) == "" {
		invalid = append(invalid, "title")
	}

	category := entity.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if !category.Valid() {
		invalid = append(invalid, "category")
	}

	if strings.TrimSpace(in.Location) == "" {
		invalid = append(invalid, "location")
	}

	startDate, err := entity.ParseEventDate(in.StartDate)
	if err != nil {
		invalid = append(invalid, "start_date")
	}
	endDate, err := entity.ParseEventDate(in.EndDate)
	if err != nil {
		invalid = append(invalid, "end_date")
	}

	totalSeats, err := strconv.Atoi(in.TotalSeats)
	if err != nil || totalSeats < 0 {
		invalid = append(invalid, "total_seats")
	}

	if len(invalid) > 0 {
		return nil, &entity.ValidationError{Fields: invalid}
	}

	// The trending field is optional on the form; anything non-numeric means
	// the event starts unpromoted.
	trending, err := strconv.Atoi(in.Trending)
	if err != nil || trending < 0 {
		trending = 0
	}

	return &entity.Event{
		Title:          strings.TrimSpace(in.Title),
		Category:       category,
		Description:    in.Description,
		Location:       strings.TrimSpace(in.Location),
		StartDate:      startDate,
		EndDate:        endDate,
		TotalSeats:     totalSeats,
		RemainingSeats: totalSeats,
		Trending:       trending,
	}, nil
}

func (in *UpdateEventInput) apply(event *entity.Event) error {
	var invalid []string

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			invalid = append(invalid, "title")
		} else {
			event.Title = strings.TrimSpace(*in.Title)
		}
	}

	if in.Category != nil {
		category := entity.Category(strings.ToLower(strings.TrimSpace(*in.Category)))
		if !category.Valid() {
			invalid = append(invalid, "category")
		} else {
			event.Category = category
		}
	}

	if in.Description != nil {
		event.Description = *in.Description
	}

	if in.Location != nil {
		if strings.TrimSpace(*in.Location) == "" {
			invalid = append(invalid, "location")
		} else {
			event.Location = strings.TrimSpace(*in.Location)
		}
	}

	if in.StartDate != nil {
		date, err := entity.ParseEventDate(*in.StartDate)
		if err != nil {
			invalid = append(invalid, "start_date")
		} else {
			event.StartDate = date
		}
	}

	if in.EndDate != nil {
		date, err := entity.ParseEventDate(*in.EndDate)
		if err != nil {
			invalid = append(invalid, "end_date")
		} else {
			event.EndDate = date
		}
	}

	if in.TotalSeats != nil {
		totalSeats, err := strconv.Atoi(*in.TotalSeats)
		if err != nil || totalSeats < 0 {
			invalid = append(invalid, "total_seats")
		} else if totalSeats != event.TotalSeats {
			delta := totalSeats - event.TotalSeats
			event.TotalSeats = totalSeats
			event.RemainingSeats += delta
			if event.RemainingSeats < 0 {
				event.RemainingSeats = 0
			}
			if event.RemainingSeats > totalSeats {
				event.RemainingSeats = totalSeats
			}
		}
	}

	if len(invalid) > 0 {
		return &entity.ValidationError{Fields: invalid}
	}
	return nil
}
