package availability

import (
	"encoding/json"
	"slices"
)

// WeeklySchedule maps each weekday to its open ranges. An empty range
// set means closed that day. Ranges are kept sorted ascending by start;
// insertion order never survives a mutation.
type WeeklySchedule struct {
	days [7][]TimeRange
}

// RangesFor returns a copy of the stored ranges for the weekday, sorted
// ascending by start. Empty means closed.
func (s *WeeklySchedule) RangesFor(d Weekday) []TimeRange {
	if !d.Valid() {
		return nil
	}
	return slices.Clone(s.days[d])
}

// SetRangesFor replaces the weekday's ranges wholesale. The new set is
// validated first; on failure the prior state is unchanged.
func (s *WeeklySchedule) SetRangesFor(d Weekday, ranges []TimeRange) error {
	if !d.Valid() {
		return ErrInvalidTimeValue
	}
	if err := ValidateRanges(ranges); err != nil {
		return err
	}
	s.days[d] = sortRanges(ranges)
	return nil
}

// Clone returns a deep copy of the weekly pattern. Exceptions live on
// the ScheduleBundle and are never part of this copy.
func (s *WeeklySchedule) Clone() WeeklySchedule {
	var out WeeklySchedule
	for d, ranges := range s.days {
		out.days[d] = slices.Clone(ranges)
	}
	return out
}

// Clear closes every weekday.
func (s *WeeklySchedule) Clear() {
	s.days = [7][]TimeRange{}
}

func (s WeeklySchedule) MarshalJSON() ([]byte, error) {
	m := make(map[string][]TimeRange, 7)
	for d := Monday; d <= Sunday; d++ {
		m[d.String()] = append([]TimeRange{}, s.days[d]...)
	}
	return json.Marshal(m)
}

func (s *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var m map[string][]TimeRange
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out WeeklySchedule
	for name, ranges := range m {
		d, err := ParseWeekday(name)
		if err != nil {
			return err
		}
		if err := ValidateRanges(ranges); err != nil {
			return err
		}
		if len(ranges) > 0 {
			out.days[d] = sortRanges(ranges)
		}
	}
	*s = out
	return nil
}
