package service

import (
	"context"
	"testing"
	"time"

	"github.com/dkolesni/eventboard/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []*entity.Event {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Newest first, the order the gateway returns.
	return []*entity.Event{
		{ID: "e5", Title: "Zig Conf", Category: entity.CategoryTech, Trending: 0, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "e4", Title: "Jazz Night", Category: entity.CategoryMusic, Trending: 1, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "e3", Title: "Sculpture Fair", Category: entity.CategoryArt, Trending: 0, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "e2", Title: "Indie Rock Fest", Category: entity.CategoryMusic, Trending: 3, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "e1", Title: "Food Truck Rally", Category: entity.CategoryOther, Trending: 2, CreatedAt: base},
	}
}

func collect(snapshot *Snapshot, text, category string) []string {
	var ids []string
	for event := range snapshot.Search(text, category) {
		ids = append(ids, event.ID)
	}
	return ids
}

func TestSnapshotSearch(t *testing.T) {
	snapshot := NewSnapshot(catalogFixture())

	tests := []struct {
		name     string
		text     string
		category string
		want     []string
	}{
		{
			name:     "empty search returns full listing in order",
			text:     "",
			category: "All",
			want:     []string{"e5", "e4", "e3", "e2", "e1"},
		},
		{
			name:     "title substring match",
			text:     "zig",
			category: "All",
			want:     []string{"e5"},
		},
		{
			name:     "search is case-insensitive",
			text:     "JAZZ",
			category: "All",
			want:     []string{"e4"},
		},
		{
			name:     "category narrows the listing",
			text:     "",
			category: "Music",
			want:     []string{"e4", "e2"},
		},
		{
			name:     "text and category combine",
			text:     "rock",
			category: "Music",
			want:     []string{"e2"},
		},
		{
			name:     "no match yields nothing",
			text:     "opera",
			category: "All",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(snapshot, tt.text, tt.category))
		})
	}
}

func TestSnapshotSearchMatchesRawListing(t *testing.T) {
	events := catalogFixture()
	snapshot := NewSnapshot(events)

	var got []*entity.Event
	for event := range snapshot.Search("", "All") {
		got = append(got, event)
	}

	assert.Equal(t, events, got)
}

func TestSnapshotSearchStopsWhenConsumerStops(t *testing.T) {
	snapshot := NewSnapshot(catalogFixture())

	count := 0
	for range snapshot.Search("", "All") {
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestSnapshotTrending(t *testing.T) {
	snapshot := NewSnapshot(catalogFixture())

	// Ranks over the fixture are {0, 1, 0, 3, 2}: rank 1, then 2, then 3.
	trending := snapshot.Trending(3)

	require.Len(t, trending, 3)
	assert.Equal(t, "e4", trending[0].ID)
	assert.Equal(t, "e1", trending[1].ID)
	assert.Equal(t, "e2", trending[2].ID)
}

func TestSnapshotTrendingLimit(t *testing.T) {
	snapshot := NewSnapshot(catalogFixture())

	assert.Len(t, snapshot.Trending(1), 1)
	assert.Len(t, snapshot.Trending(10), 3)
	assert.Empty(t, snapshot.Trending(0))
}

func TestSnapshotTrendingTieBreak(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshot := NewSnapshot([]*entity.Event{
		{ID: "newer", Trending: 1, CreatedAt: base.Add(time.Hour)},
		{ID: "older", Trending: 1, CreatedAt: base},
	})

	trending := snapshot.Trending(2)

	require.Len(t, trending, 2)
	assert.Equal(t, "newer", trending[0].ID)
	assert.Equal(t, "older", trending[1].ID)
}

func TestCatalogServiceSnapshotFallsBackToRepository(t *testing.T) {
	repo := new(mockEventRepository)
	cache := &noopCache{}
	svc := NewCatalogService(repo, cache)

	events := catalogFixture()
	repo.On("GetAll", mock.Anything).Return(events, nil)

	snapshot, err := svc.Snapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, events, snapshot.Events())
	repo.AssertExpectations(t)
}

func TestCatalogServiceSnapshotRepositoryError(t *testing.T) {
	repo := new(mockEventRepository)
	svc := NewCatalogService(repo, &noopCache{})

	repo.On("GetAll", mock.Anything).Return(nil, errMiss)

	_, err := svc.Snapshot(context.Background())

	assert.Error(t, err)
}
