package entity

import (
	"time"
)

type Category string

const (
	CategoryMusic Category = "music"
	CategoryTech  Category = "tech"
	CategoryArt   Category = "art"
	CategoryOther Category = "other"
)

// Valid reports whether c is one of the known catalog categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMusic, CategoryTech, CategoryArt, CategoryOther:
		return true
	}
	return false
}

type Event struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Category       Category   `json:"category" db:"category"`
	Description    string     `json:"description" db:"description"`
	Location       string     `json:"location" db:"location"`
	Image          string     `json:"image" db:"image"`
	StartDate      *EventDate `json:"start_date" db:"start_date"`
	EndDate        *EventDate `json:"end_date" db:"end_date"`
	TotalSeats     int        `json:"total_seats" db:"total_seats"`
	RemainingSeats int        `json:"remaining_seats" db:"remaining_seats"`
	Trending       int        `json:"trending" db:"trending"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// IsTrending reports whether the event carries a promotional rank.
func (e *Event) IsTrending() bool {
	return e.Trending > 0
}

// SoldOut reports whether no seats are left to book.
func (e *Event) SoldOut() bool {
	return e.RemainingSeats <= 0
}
