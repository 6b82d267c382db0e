package availability

import "iter"

// Slots yields every bookable slot start derivable from the open ranges
// at the given granularity: for each range [start, end), every
// start + k*slotMinutes whose full slot still fits before end. Ranges
// are walked in ascending order; a range shorter than one slot yields
// nothing, and no slot ever spans the gap between two ranges.
//
// The sequence is lazy and restartable — it is a pure function of its
// inputs, so a consumer that stops after the first N slots pays only
// for those N.
func Slots(openRanges []TimeRange, slotMinutes int) iter.Seq[MinuteOfDay] {
	return func(yield func(MinuteOfDay) bool) {
		if slotMinutes <= 0 {
			return
		}
		step := MinuteOfDay(slotMinutes)
		for _, r := range sortRanges(openRanges) {
			for t := r.Start; t+step <= r.End; t += step {
				if !yield(t) {
					return
				}
			}
		}
	}
}
