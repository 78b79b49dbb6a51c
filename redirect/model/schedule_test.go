package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func window(s *Schedule, before, after time.Duration) {
	s.Start = noon.Add(-before)
	s.End = noon.Add(after)
}

func TestActiveUrlNoSchedules(t *testing.T) {
	url, errs := ActiveUrl("https://example.com", nil, noon)
	assert.Equal(t, "https://example.com", url)
	assert.Empty(t, errs)

	url, errs = ActiveUrl("https://example.com", []Schedule{}, noon)
	assert.Equal(t, "https://example.com", url)
	assert.Empty(t, errs)
}

func TestActiveUrlWildcardSchedule(t *testing.T) {
	sched := Schedule{Cron: "* * * * *", DurationMinutes: 1, AlternativeUrl: "https://alt.com"}
	window(&sched, 10*time.Minute, 10*time.Minute)

	url, errs := ActiveUrl("https://example.com", []Schedule{sched}, noon)
	assert.Equal(t, "https://alt.com", url)
	assert.Empty(t, errs)
}

func TestActiveUrlEmptyCronAlwaysFires(t *testing.T) {
	sched := Schedule{Cron: "", AlternativeUrl: "https://alt.com"}
	window(&sched, time.Hour, time.Hour)

	url, _ := ActiveUrl("https://example.com", []Schedule{sched}, noon)
	assert.Equal(t, "https://alt.com", url)
}

func TestActiveUrlOutsideWindow(t *testing.T) {
	past := Schedule{Cron: "* * * * *", AlternativeUrl: "https://past.com"}
	past.Start = noon.Add(-2 * time.Hour)
	past.End = noon.Add(-time.Hour)

	future := Schedule{Cron: "* * * * *", AlternativeUrl: "https://future.com"}
	future.Start = noon.Add(time.Hour)
	future.End = noon.Add(2 * time.Hour)

	url, _ := ActiveUrl("https://example.com", []Schedule{past, future}, noon)
	assert.Equal(t, "https://example.com", url)
}

func TestActiveUrlWindowIsOpenInterval(t *testing.T) {
	sched := Schedule{Cron: "* * * * *", AlternativeUrl: "https://alt.com"}
	sched.Start = noon
	sched.End = noon.Add(time.Hour)

	// now == start does not qualify, membership is strict on both ends
	url, _ := ActiveUrl("https://example.com", []Schedule{sched}, noon)
	assert.Equal(t, "https://example.com", url)

	url, _ = ActiveUrl("https://example.com", []Schedule{sched}, noon.Add(time.Second))
	assert.Equal(t, "https://alt.com", url)
}

func TestActiveUrlEarliestStartWins(t *testing.T) {
	earlier := Schedule{Cron: "* * * * *", AlternativeUrl: "https://earlier.com"}
	window(&earlier, 30*time.Minute, 30*time.Minute)

	later := Schedule{Cron: "* * * * *", AlternativeUrl: "https://later.com"}
	window(&later, 10*time.Minute, 30*time.Minute)

	// input order must not matter
	url, _ := ActiveUrl("https://example.com", []Schedule{later, earlier}, noon)
	assert.Equal(t, "https://earlier.com", url)

	url, _ = ActiveUrl("https://example.com", []Schedule{earlier, later}, noon)
	assert.Equal(t, "https://earlier.com", url)
}

func TestIsActiveCronOccurrence(t *testing.T) {
	sched := Schedule{Cron: "0 12 * * *", DurationMinutes: 5}
	window(&sched, 24*time.Hour, 24*time.Hour)

	// noon trigger covers [12:00, 12:05)
	active, err := sched.IsActive(noon.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = sched.IsActive(noon.Add(5 * time.Minute))
	require.NoError(t, err)
	assert.False(t, active)

	active, err = sched.IsActive(noon.Add(-3 * time.Minute))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestIsActiveQuarterHourCron(t *testing.T) {
	sched := Schedule{Cron: "*/15 * * * *", DurationMinutes: 5}
	window(&sched, 24*time.Hour, 24*time.Hour)

	active, err := sched.IsActive(noon.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = sched.IsActive(noon.Add(7 * time.Minute))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestIsActiveZeroDurationNeverFires(t *testing.T) {
	sched := Schedule{Cron: "0 12 * * *", DurationMinutes: 0}
	window(&sched, 24*time.Hour, 24*time.Hour)

	active, err := sched.IsActive(noon)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestActiveUrlMalformedCronFailsClosed(t *testing.T) {
	bad := Schedule{Cron: "not a cron", DurationMinutes: 1, AlternativeUrl: "https://bad.com"}
	window(&bad, 30*time.Minute, 30*time.Minute)

	good := Schedule{Cron: "* * * * *", AlternativeUrl: "https://good.com"}
	window(&good, 10*time.Minute, 30*time.Minute)

	// the bad schedule starts earlier but must not break resolution
	url, errs := ActiveUrl("https://example.com", []Schedule{bad, good}, noon)
	assert.Equal(t, "https://good.com", url)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrMalformedCron))
}

func TestActiveUrlMalformedCronOnlySchedule(t *testing.T) {
	bad := Schedule{Cron: "61 * * * *", DurationMinutes: 1, AlternativeUrl: "https://bad.com"}
	window(&bad, 30*time.Minute, 30*time.Minute)

	url, errs := ActiveUrl("https://example.com", []Schedule{bad}, noon)
	assert.Equal(t, "https://example.com", url)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrMalformedCron))
}

func TestActiveUrlDeterministic(t *testing.T) {
	a := Schedule{Cron: "", AlternativeUrl: "https://a.com"}
	window(&a, 20*time.Minute, 20*time.Minute)
	b := Schedule{Cron: "", AlternativeUrl: "https://b.com"}
	window(&b, 15*time.Minute, 25*time.Minute)
	c := Schedule{Cron: "0 0 1 1 *", DurationMinutes: 1, AlternativeUrl: "https://c.com"}
	window(&c, 25*time.Minute, 25*time.Minute)

	orders := [][]Schedule{
		{a, b, c},
		{c, b, a},
		{b, a, c},
	}
	for _, schedules := range orders {
		url, _ := ActiveUrl("https://example.com", schedules, noon)
		assert.Equal(t, "https://a.com", url)
	}
}
