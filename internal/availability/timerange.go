package availability

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MinuteOfDay is a wall-clock time expressed as minutes since midnight.
// It carries no date and no zone. Valid values are 0..1439.
type MinuteOfDay int

const minutesPerDay = 24 * 60

func (m MinuteOfDay) Valid() bool {
	return m >= 0 && m < minutesPerDay
}

// String renders the minute as HH:MM, the wire format used by the API
// and the settings store.
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ParseMinuteOfDay parses an HH:MM string into a MinuteOfDay.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTimeValue, s)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeValue, s)
	}
	return MinuteOfDay(h*60 + m), nil
}

func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTimeValue, int(m))
	}
	return []byte(`"` + m.String() + `"`), nil
}

func (m *MinuteOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseMinuteOfDay(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// TimeRange is an intraday open interval with closed-open semantics:
// the resource is open at Start and closes at End.
type TimeRange struct {
	Start MinuteOfDay `json:"start"`
	End   MinuteOfDay `json:"end"`
}

// Overlaps reports whether two ranges share any minute. Touching
// endpoints (a.End == b.Start) are not an overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// ValidateRanges checks a range set for well-formedness: every minute in
// bounds, Start < End for every range, and no two ranges overlapping.
// An empty set or single valid range passes. Mutating callers must treat
// a non-nil result as a rejection and keep prior state.
func ValidateRanges(ranges []TimeRange) error {
	for _, r := range ranges {
		if !r.Start.Valid() || !r.End.Valid() {
			return fmt.Errorf("%w: range %s-%s", ErrInvalidTimeValue, r.Start, r.End)
		}
		if r.Start >= r.End {
			return fmt.Errorf("%w: range %s-%s is inverted or empty", ErrInvalidRanges, r.Start, r.End)
		}
	}

	sorted := sortRanges(ranges)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return fmt.Errorf("%w: %s-%s overlaps %s-%s", ErrInvalidRanges,
				sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
	}
	return nil
}

// sortRanges returns a copy ordered ascending by Start.
func sortRanges(ranges []TimeRange) []TimeRange {
	out := slices.Clone(ranges)
	slices.SortFunc(out, func(a, b TimeRange) int {
		return int(a.Start) - int(b.Start)
	})
	return out
}
