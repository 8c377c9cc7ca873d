package curve

import "sort"

// Pivot returns the index of the rightmost tick whose index is at or below
// the active tick. Returns len(ticks)-1 when no tick exceeds the active
// tick, and -1 when every tick lies above it or the sequence is empty.
func Pivot(ticks []Tick, activeTick int32) int {
	first := sort.Search(len(ticks), func(i int) bool {
		return ticks[i].Index > activeTick
	})
	return first - 1
}
