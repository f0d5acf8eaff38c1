package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/pkg/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var errMiss = errors.New("cache miss")

type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *mockEventRepository) GetAll(ctx context.Context) ([]*entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *mockEventRepository) Update(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEventRepository) Search(ctx context.Context, text string) ([]*entity.Event, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *mockEventRepository) DecrementSeat(ctx context.Context, id string) (*entity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *mockEventRepository) UpdateTrending(ctx context.Context, id string, rank int) error {
	args := m.Called(ctx, id, rank)
	return args.Error(0)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Upload(ctx context.Context, key string, data io.Reader) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockObjectStore) KeyFromURL(url string) (string, bool) {
	const prefix = "http://store.local/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

type mockTaskPublisher struct {
	mock.Mock
}

func (m *mockTaskPublisher) Publish(ctx context.Context, task *queue.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// passthroughProcessor hands the blob through untouched.
type passthroughProcessor struct{}

func (passthroughProcessor) Normalize(data io.Reader) (io.Reader, error) {
	return data, nil
}

// noopCache behaves like a cache whose key never exists.
type noopCache struct {
	invalidations int
}

func (c *noopCache) Get(ctx context.Context) ([]*entity.Event, error) {
	return nil, errMiss
}

func (c *noopCache) Set(ctx context.Context, events []*entity.Event) error {
	return nil
}

func (c *noopCache) Invalidate(ctx context.Context) error {
	c.invalidations++
	return nil
}

// seatStoreStub is an in-memory gateway with the same conditional-decrement
// contract as the Postgres repository, for racing bookings in tests.
type seatStoreStub struct {
	mu     sync.Mutex
	events map[string]*entity.Event
}

func newSeatStoreStub(events ...*entity.Event) *seatStoreStub {
	s := &seatStoreStub{events: make(map[string]*entity.Event)}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *seatStoreStub) Create(ctx context.Context, event *entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Same contract as the gateway: identity and created-at are assigned here.
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()
	s.events[event.ID] = event
	return nil
}

func (s *seatStoreStub) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (s *seatStoreStub) GetAll(ctx context.Context) ([]*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []*entity.Event
	for _, event := range s.events {
		copied := *event
		events = append(events, &copied)
	}
	return events, nil
}

func (s *seatStoreStub) Update(ctx context.Context, event *entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return entity.ErrEventNotFound
	}
	s.events[event.ID] = event
	return nil
}

func (s *seatStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return entity.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *seatStoreStub) Search(ctx context.Context, text string) ([]*entity.Event, error) {
	return s.GetAll(ctx)
}

func (s *seatStoreStub) DecrementSeat(ctx context.Context, id string) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if event.RemainingSeats <= 0 {
		return nil, entity.ErrOutOfCapacity
	}
	event.RemainingSeats--
	copied := *event
	return &copied, nil
}

func (s *seatStoreStub) UpdateTrending(ctx context.Context, id string, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return entity.ErrEventNotFound
	}
	event.Trending = rank
	return nil
}
