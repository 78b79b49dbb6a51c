package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrMalformedCron reports a recurrence expression that does not parse.
// A schedule carrying one never fires; it does not abort resolution.
var ErrMalformedCron = errors.New("malformed cron expression")

// Standard 5-field cron: minute, hour, day of month, month, day of week.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule overrides a link's destination during matching recurrence windows
// inside its [Start, End) validity interval.
type Schedule struct {
	Id              string    `json:"id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Cron            string    `json:"cron"`
	DurationMinutes int       `json:"durationMinutes"`
	AlternativeUrl  string    `json:"alternativeUrl"`
}

// IsActive reports whether the schedule is firing at pointInTime.
//
// An empty or all-wildcard cron means the schedule is always firing inside
// its validity window. Otherwise the recurrence fires when some trigger
// instant t within pointInTime±DurationMinutes satisfies
// t <= pointInTime < t+DurationMinutes.
func (s *Schedule) IsActive(pointInTime time.Time) (bool, error) {
	if !pointInTime.After(s.Start) || !pointInTime.Before(s.End) {
		return false, nil
	}

	trimmed := strings.TrimSpace(s.Cron)
	if trimmed == "" || trimmed == "* * * * *" {
		return true, nil
	}

	if s.DurationMinutes <= 0 {
		return false, nil
	}

	expression, err := cronParser.Parse(trimmed)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrMalformedCron, s.Cron, err)
	}

	duration := time.Duration(s.DurationMinutes) * time.Minute
	bufferStart := pointInTime.Add(-duration)
	bufferEnd := pointInTime.Add(duration)

	// Walk the trigger instants inside [bufferStart, bufferEnd]. Next is
	// strictly-after, so back up one second to keep bufferStart itself.
	for occ := expression.Next(bufferStart.Add(-time.Second)); !occ.IsZero() && !occ.After(bufferEnd); occ = expression.Next(occ) {
		if occ.After(pointInTime) {
			break
		}
		if pointInTime.Before(occ.Add(duration)) {
			return true, nil
		}
	}
	return false, nil
}

// ActiveUrl resolves the destination for a link at the given instant:
// schedules whose validity window contains now are tried in Start order and
// the earliest-starting firing one wins, otherwise defaultUrl.
//
// Malformed recurrence expressions are collected for logging and the
// offending schedule is treated as never firing.
func ActiveUrl(defaultUrl string, schedules []Schedule, now time.Time) (string, []error) {
	if len(schedules) == 0 {
		return defaultUrl, nil
	}

	candidates := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		if s.Start.Before(now) && s.End.After(now) {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start.Before(candidates[j].Start)
	})

	var errs []error
	for i := range candidates {
		active, err := candidates[i].IsActive(now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if active {
			return candidates[i].AlternativeUrl, errs
		}
	}
	return defaultUrl, errs
}
