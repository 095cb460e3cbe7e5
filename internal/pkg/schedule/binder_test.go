package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	zoneEast = time.FixedZone("UTC+10", 10*60*60)
	zoneWest = time.FixedZone("UTC-5", -5*60*60)
)

func TestToPersistableUsesLocalWallClock(t *testing.T) {
	sel := Selection{ContentID: "c-1", LocalDate: "2025-03-10", LocalTime: "09:00"}

	p, err := ToPersistable(sel, zoneWest)
	require.NoError(t, err)
	assert.Equal(t, "c-1", p.GeneratedContentID)
	// 09:00 at UTC-5 is 14:00 UTC; parsing the combined string as UTC would
	// have produced 09:00 UTC instead.
	assert.Equal(t, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), p.ScheduledAtUTC)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		date string
		tod  string
		loc  *time.Location
	}{
		{date: "2025-01-31", tod: "23:30", loc: zoneEast},
		{date: "2025-01-01", tod: "00:00", loc: zoneEast},
		{date: "2025-02-28", tod: "12:15", loc: zoneWest},
		{date: "2024-02-29", tod: "06:45", loc: zoneWest},
		{date: "2025-12-31", tod: "23:59", loc: time.UTC},
	}

	for _, tt := range tests {
		sel := Selection{ContentID: "c", LocalDate: tt.date, LocalTime: tt.tod}
		p, err := ToPersistable(sel, tt.loc)
		require.NoError(t, err)

		gotDate, gotTime := FromPersisted(p.ScheduledAtUTC, tt.loc)
		assert.Equal(t, tt.date, gotDate, "date round trip in %s", tt.loc)
		assert.Equal(t, tt.tod, gotTime, "time round trip in %s", tt.loc)
	}
}

func TestToPersistableValidation(t *testing.T) {
	_, err := ToPersistable(Selection{LocalDate: "2025-01-01", LocalTime: "10:00"}, time.UTC)
	assert.True(t, errors.Is(err, ErrInvalidSelection), "missing content id")

	_, err = ToPersistable(Selection{ContentID: "c", LocalDate: "bad", LocalTime: "10:00"}, time.UTC)
	assert.True(t, errors.Is(err, ErrInvalidSelection), "malformed date")

	_, err = ToPersistable(Selection{ContentID: "c", LocalDate: "2025-01-01", LocalTime: "25:99"}, time.UTC)
	assert.True(t, errors.Is(err, ErrInvalidSelection), "malformed time")
}

func TestMonthWindowIncludesFinalInstant(t *testing.T) {
	sel := Selection{ContentID: "c", LocalDate: "2025-01-31", LocalTime: "23:30"}
	p, err := ToPersistable(sel, time.UTC)
	require.NoError(t, err)

	start, end := MonthWindow(2025, time.January, time.UTC)
	assert.False(t, p.ScheduledAtUTC.Before(start))
	assert.False(t, p.ScheduledAtUTC.After(end), "item on the last day must fall inside the month window")

	// The window ends inside January, not at February's midnight.
	assert.Equal(t, time.January, end.Month())
	next, _ := MonthWindow(2025, time.February, time.UTC)
	assert.True(t, end.Before(next))
}

func TestMonthWindowLocalZone(t *testing.T) {
	// 23:30 local on Jan 31 at UTC+10 is Jan 31 13:30 UTC and must still fall
	// inside the viewer's January window.
	sel := Selection{ContentID: "c", LocalDate: "2025-01-31", LocalTime: "23:30"}
	p, err := ToPersistable(sel, zoneEast)
	require.NoError(t, err)

	start, end := MonthWindow(2025, time.January, zoneEast)
	assert.False(t, p.ScheduledAtUTC.Before(start))
	assert.False(t, p.ScheduledAtUTC.After(end))
}

func TestDayKey(t *testing.T) {
	// 01:00 UTC on March 2nd is still March 1st at UTC-5.
	instant := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, DayKey("2025-03-01"), DayKeyOf(instant, zoneWest))
	assert.Equal(t, DayKey("2025-03-02"), DayKeyOf(instant, time.UTC))

	day, err := DayKey("2025-03-01").Date(zoneWest)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, zoneWest).Unix(), day.Unix())
}
