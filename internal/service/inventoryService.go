package service

import (
	"context"
	"fmt"

	repository "github.com/dkolesni/eventboard/internal/database/postgres"
	"github.com/dkolesni/eventboard/internal/entity"

	"github.com/sirupsen/logrus"
)

type inventoryService struct {
	eventRepo repository.EventRepository
	cache     SnapshotCache
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(eventRepo repository.EventRepository, cache SnapshotCache) InventoryService {
	return &inventoryService{
		eventRepo: eventRepo,
		cache:     cache,
	}
}

// BookSeat takes one seat off the event. The decrement is a single
// conditional update at the gateway, so the remaining count never goes
// negative no matter how many bookings race.
func (s *inventoryService) BookSeat(ctx context.Context, id string) (*entity.Event, error) {
	event, err := s.eventRepo.DecrementSeat(ctx, id)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id":        event.ID,
		"remaining_seats": event.RemainingSeats,
	}).Info("Seat booked")

	s.invalidateCatalog(ctx)
	return event, nil
}

// SetTrending assigns a promotional rank. Ranks are operator-chosen and not
// unique across events.
func (s *inventoryService) SetTrending(ctx context.Context, id string, rank int) error {
	if rank <= 0 {
		return entity.ErrInvalidTrendingRank
	}

	if err := s.eventRepo.UpdateTrending(ctx, id, rank); err != nil {
		return fmt.Errorf("failed to set trending rank: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *inventoryService) ClearTrending(ctx context.Context, id string) error {
	if err := s.eventRepo.UpdateTrending(ctx, id, 0); err != nil {
		return fmt.Errorf("failed to clear trending rank: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *inventoryService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logrus.Warnf("Failed to invalidate catalog cache: %v", err)
	}
}
