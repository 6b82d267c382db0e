package availability

import (
	"fmt"
	"slices"
	"time"
)

// ClinicResource is the resource id of the clinic itself. Any other
// resource id is taken to be a room id.
const ClinicResource = "clinic"

// SlotSizes are the slot granularities the engine accepts, in minutes.
var SlotSizes = []int{5, 10, 15, 20, 30}

// ScheduleBundle pairs a weekly pattern with its own exception list.
// The clinic and every room with custom hours each own one; there is no
// cross-resource exception inheritance.
type ScheduleBundle struct {
	Weekly     WeeklySchedule  `json:"weekly"`
	Exceptions []DateException `json:"exceptions,omitempty"`
}

// CopyHoursFrom replaces the bundle's weekly pattern with a deep copy of
// the source's. Exceptions are untouched: copying clinic hours to a room
// never carries the clinic's exceptions along.
func (b *ScheduleBundle) CopyHoursFrom(src *ScheduleBundle) {
	b.Weekly = src.Weekly.Clone()
}

// Clear closes every weekday and drops all exceptions, leaving an
// all-closed bundle.
func (b *ScheduleBundle) Clear() {
	b.Weekly.Clear()
	b.Exceptions = nil
}

// Config is the aggregate availability configuration: the zone dates are
// interpreted in, the slot granularity, the clinic bundle, and the
// per-room override bundles. The engine treats Config values as
// immutable snapshots; every operation here is a pure function of one.
type Config struct {
	Timezone    string                    `json:"timezone"`
	SlotMinutes int                       `json:"slot_minutes"`
	Clinic      ScheduleBundle            `json:"clinic"`
	Rooms       map[string]ScheduleBundle `json:"rooms,omitempty"`
}

// Validate checks the aggregate invariants: a loadable IANA zone and a
// supported slot size.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfiguration, c.Timezone, err)
	}
	if !slices.Contains(SlotSizes, c.SlotMinutes) {
		return fmt.Errorf("%w: slot size %d minutes", ErrInvalidConfiguration, c.SlotMinutes)
	}
	return nil
}

// bundleFor picks the schedule bundle for a resource. A room with a
// recorded override uses its own bundle wholesale; everything else,
// including unknown room ids, falls back to the clinic bundle —
// exceptions included. No field-level merging ever happens.
func (c *Config) bundleFor(resource string) *ScheduleBundle {
	if b, ok := c.Rooms[resource]; ok {
		return &b
	}
	return &c.Clinic
}

// EffectiveHours resolves the final open intervals for one
// (resource, date) pair: exception precedence first, then the weekly
// pattern for the date's weekday computed in the configured zone.
// Output is sorted ascending by start and internally non-overlapping.
func EffectiveHours(cfg *Config, resource, date string) ([]TimeRange, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfiguration, cfg.Timezone, err)
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	bundle := cfg.bundleFor(resource)

	if exc, ok := ExceptionFor(bundle.Exceptions, date); ok {
		switch {
		case exc.Closed:
			return []TimeRange{}, nil
		case len(exc.Overrides) > 0:
			if err := ValidateRanges(exc.Overrides); err != nil {
				return nil, fmt.Errorf("%w: stored overrides for %s: %v", ErrInvalidConfiguration, date, err)
			}
			return sortRanges(exc.Overrides), nil
		}
		// Placeholder entry: regular hours apply.
	}

	return bundle.Weekly.RangesFor(WeekdayOf(day.Weekday())), nil
}
