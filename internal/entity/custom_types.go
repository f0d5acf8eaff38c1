package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// EventDate is a date-only value. The storefront treats missing dates as
// "TBA", so it is always used through a pointer.
type EventDate struct {
	time.Time
}

const eventDateLayout = "2006-01-02"

func NewEventDate(t time.Time) *EventDate {
	return &EventDate{Time: t}
}

// ParseEventDate parses the form representation of a date.
func ParseEventDate(s string) (*EventDate, error) {
	t, err := time.Parse(eventDateLayout, s)
	if err != nil {
		return nil, err
	}
	return &EventDate{Time: t}, nil
}

func (d *EventDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := string(b[1 : len(b)-1]) // Remove quotes
	t, err := time.Parse(eventDateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d EventDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(eventDateLayout) + `"`), nil
}

func (d EventDate) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *EventDate) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		d.Time = v
	case []byte:
		t, err := time.Parse(eventDateLayout, string(v))
		if err != nil {
			return err
		}
		d.Time = t
	default:
		return fmt.Errorf("cannot scan type %T into EventDate", value)
	}
	return nil
}
