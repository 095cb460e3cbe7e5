package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ErrInvalidSelection marks a malformed scheduling selection (missing content
// reference, unparseable date or time).
var ErrInvalidSelection = errors.New("invalid schedule selection")

// Selection is the user's choice of one generated content item plus a local
// wall-clock date and time.
type Selection struct {
	ContentID string `json:"content_id"`
	LocalDate string `json:"local_date"` // YYYY-MM-DD
	LocalTime string `json:"local_time"` // HH:mm
}

// Persistable is the backend-ready scheduling payload.
type Persistable struct {
	GeneratedContentID string    `json:"generated_content_id"`
	ScheduledAtUTC     time.Time `json:"scheduled_at_utc"`
}

// ToPersistable combines the selection's date and time as local wall-clock
// components in loc and converts the result to an absolute UTC instant. The
// combined string is never interpreted as UTC, so a user scheduling "09:00"
// reads back "09:00" regardless of the server's timezone.
func ToPersistable(sel Selection, loc *time.Location) (Persistable, error) {
	if sel.ContentID == "" {
		return Persistable{}, fmt.Errorf("%w: content reference is required", ErrInvalidSelection)
	}
	if loc == nil {
		loc = time.Local
	}
	local, err := time.ParseInLocation(dateLayout+" "+timeLayout, sel.LocalDate+" "+sel.LocalTime, loc)
	if err != nil {
		return Persistable{}, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return Persistable{
		GeneratedContentID: sel.ContentID,
		ScheduledAtUTC:     local.UTC(),
	}, nil
}

// FromPersisted extracts local calendar fields from an absolute instant using
// the viewer's zone; the inverse of ToPersistable.
func FromPersisted(scheduledAtUTC time.Time, loc *time.Location) (localDate, localTime string) {
	if loc == nil {
		loc = time.Local
	}
	local := scheduledAtUTC.In(loc)
	return local.Format(dateLayout), local.Format(timeLayout)
}

// DayKey is the canonical calendar bucket key ("YYYY-MM-DD"). All day-bucket
// construction goes through DayKeyOf so the format exists in exactly one place.
type DayKey string

// DayKeyOf buckets an instant into the viewer's local calendar day.
func DayKeyOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.Local
	}
	return DayKey(t.In(loc).Format(dateLayout))
}

// Date parses the key back into a midnight instant in loc.
func (k DayKey) Date(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, string(k), loc)
}

// MonthWindow returns the UTC query window for a month view. The end bound is
// the final instant of the month's last day, so items scheduled late on that
// day are included.
func MonthWindow(year int, month time.Month, loc *time.Location) (startUTC, endUTC time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start.UTC(), end.UTC()
}
