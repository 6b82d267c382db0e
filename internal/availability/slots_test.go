package availability

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsSplitMorningAfternoon(t *testing.T) {
	// 09:00-12:00 and 13:00-17:00 at 30 minutes: 6 + 8 slots, none
	// spanning the lunch gap.
	open := []TimeRange{tr(540, 720), tr(780, 1020)}

	got := slices.Collect(Slots(open, 30))
	require.Len(t, got, 14)

	assert.Equal(t, "09:00", got[0].String())
	assert.Equal(t, "09:30", got[1].String())
	assert.Equal(t, "11:30", got[5].String())
	assert.Equal(t, "13:00", got[6].String())
	assert.Equal(t, "16:30", got[13].String())
}

func TestSlotsStayInsideTheirRange(t *testing.T) {
	open := []TimeRange{tr(540, 725), tr(780, 1015)}
	const slot = 30

	var prev MinuteOfDay = -1
	for s := range Slots(open, slot) {
		inSome := false
		for _, r := range open {
			if s >= r.Start && s+slot <= r.End {
				inSome = true
			}
		}
		assert.True(t, inSome, "slot %s leaks outside every range", s)
		if prev >= 0 && s-prev != slot {
			// Increments are exact within a range; the only jump is the
			// gap between ranges.
			assert.Equal(t, MinuteOfDay(780), s, "unexpected jump to %s", s)
		}
		prev = s
	}
}

func TestSlotsShortRangeYieldsNothing(t *testing.T) {
	assert.Empty(t, slices.Collect(Slots([]TimeRange{tr(540, 560)}, 30)))
	assert.Empty(t, slices.Collect(Slots(nil, 30)))
	assert.Empty(t, slices.Collect(Slots([]TimeRange{tr(540, 720)}, 0)))
}

func TestSlotsExactFit(t *testing.T) {
	// A range of exactly one slot yields exactly that slot start.
	got := slices.Collect(Slots([]TimeRange{tr(540, 570)}, 30))
	require.Len(t, got, 1)
	assert.Equal(t, MinuteOfDay(540), got[0])
}

func TestSlotsEarlyStopAndRestart(t *testing.T) {
	open := []TimeRange{tr(540, 1020)}
	seq := Slots(open, 15)

	var firstThree []MinuteOfDay
	for s := range seq {
		firstThree = append(firstThree, s)
		if len(firstThree) == 3 {
			break
		}
	}
	assert.Equal(t, []MinuteOfDay{540, 555, 570}, firstThree)

	// Restartable: the same sequence value replays from the top.
	full := slices.Collect(seq)
	require.NotEmpty(t, full)
	assert.Equal(t, MinuteOfDay(540), full[0])
	assert.Len(t, full, 32)
}

func TestSlotsOrdersUnsortedInput(t *testing.T) {
	got := slices.Collect(Slots([]TimeRange{tr(780, 840), tr(540, 600)}, 30))
	assert.Equal(t, []MinuteOfDay{540, 570, 780, 810}, got)
}
