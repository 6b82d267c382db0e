package availability

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date form used to key exceptions.
const DateLayout = "2006-01-02"

// DateException is a one-off override for a single calendar date:
// either a full closure, a replacement of the weekly hours, or a
// redundant placeholder (neither closed nor overriding) that resolves
// as "regular hours" and may be pruned.
type DateException struct {
	Date      string      `json:"date"`
	Closed    bool        `json:"closed"`
	Overrides []TimeRange `json:"overrides,omitempty"`
}

// Validate checks the exception's internal consistency: a parseable ISO
// date, no overrides alongside a full closure, and well-formed override
// ranges.
func (e DateException) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: exception date %q", ErrInvalidRanges, e.Date)
	}
	if e.Closed && len(e.Overrides) > 0 {
		return fmt.Errorf("%w: closed exception for %s carries override hours", ErrInvalidRanges, e.Date)
	}
	return ValidateRanges(e.Overrides)
}

// IsNoop reports whether the exception changes nothing: not closed and
// no override hours. Such entries are prunable.
func (e DateException) IsNoop() bool {
	return !e.Closed && len(e.Overrides) == 0
}

// ExceptionFor looks up the exception recorded for an exact calendar
// date. There is no recurrence and no pattern matching; absence means
// the caller falls back to the weekly pattern.
func ExceptionFor(list []DateException, date string) (DateException, bool) {
	for _, e := range list {
		if e.Date == date {
			return e, true
		}
	}
	return DateException{}, false
}

// UpsertException sets the exception for its date: an existing entry for
// the same date is replaced, otherwise the entry is appended. The result
// is kept sorted by date, one entry per date.
func UpsertException(list []DateException, exc DateException) []DateException {
	out := slices.Clone(list)
	for i, e := range out {
		if e.Date == exc.Date {
			out[i] = exc
			return out
		}
	}
	out = append(out, exc)
	slices.SortFunc(out, func(a, b DateException) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

// RemoveException drops the entry for the date if present. Removing an
// absent date is a no-op, not an error.
func RemoveException(list []DateException, date string) []DateException {
	return slices.DeleteFunc(slices.Clone(list), func(e DateException) bool {
		return e.Date == date
	})
}
