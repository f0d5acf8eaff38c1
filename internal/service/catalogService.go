package service

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"

	repository "github.com/dkolesni/eventboard/internal/database/postgres"
	"github.com/dkolesni/eventboard/internal/entity"

	"github.com/sirupsen/logrus"
)

// CategoryAll is the category filter value that matches every event.
const CategoryAll = "All"

// Snapshot is an immutable view of the event collection in descending
// created-at order. Queries are pure transforms; a fresh view is an explicit
// CatalogService.Snapshot call.
type Snapshot struct {
	events []*entity.Event
}

func NewSnapshot(events []*entity.Event) *Snapshot {
	return &Snapshot{events: events}
}

// Events returns the raw listing, newest first.
func (s *Snapshot) Events() []*entity.Event {
	return s.events
}

// Search yields events whose lower-cased title contains the lower-cased
// search text (empty matches all) and whose category matches the selected
// one ("All" matches every category). Collection order is preserved.
func (s *Snapshot) Search(text, category string) iter.Seq[*entity.Event] {
	search := strings.ToLower(text)
	return func(yield func(*entity.Event) bool) {
		for _, event := range s.events {
			if !strings.Contains(strings.ToLower(event.Title), search) {
				continue
			}
			if !matchesCategory(event, category) {
				continue
			}
			if !yield(event) {
				return
			}
		}
	}
}

// Trending returns the first n promoted events, ordered by rank ascending
// (rank 1 first); ties broken by created-at descending.
func (s *Snapshot) Trending(n int) []*entity.Event {
	var promoted []*entity.Event
	for _, event := range s.events {
		if event.IsTrending() {
			promoted = append(promoted, event)
		}
	}

	sort.SliceStable(promoted, func(i, j int) bool {
		if promoted[i].Trending != promoted[j].Trending {
			return promoted[i].Trending < promoted[j].Trending
		}
		return promoted[i].CreatedAt.After(promoted[j].CreatedAt)
	})

	if n >= 0 && n < len(promoted) {
		promoted = promoted[:n]
	}
	return promoted
}

func matchesCategory(event *entity.Event, category string) bool {
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return true
	}
	return strings.EqualFold(string(event.Category), category)
}

type catalogService struct {
	eventRepo repository.EventRepository
	cache     SnapshotCache
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(eventRepo repository.EventRepository, cache SnapshotCache) CatalogService {
	return &catalogService{
		eventRepo: eventRepo,
		cache:     cache,
	}
}

// Snapshot loads the full collection, cache-aside: a cache failure degrades
// to the repository, a repository failure is surfaced to the caller.
func (s *catalogService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		events, err := s.cache.Get(ctx)
		if err == nil {
			return NewSnapshot(events), nil
		}
		logrus.Debugf("Catalog cache miss: %v", err)
	}

	events, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, events); err != nil {
			logrus.Warnf("Failed to populate catalog cache: %v", err)
		}
	}

	return NewSnapshot(events), nil
}

func (s *catalogService) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}
