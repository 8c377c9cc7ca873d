package curve

// Tick spacing per fee tier, fee in hundredths of a bip.
var tickSpacings = map[uint32]int32{
	100:   1,
	500:   10,
	3000:  60,
	10000: 200,
}

const defaultTickSpacing int32 = 60

// SpacingForFee returns the tick spacing for a fee tier, defaulting to 60
// for unknown or absent tiers.
func SpacingForFee(feeBps uint32) int32 {
	if spacing, ok := tickSpacings[feeBps]; ok {
		return spacing
	}
	return defaultTickSpacing
}

// ActiveTick snaps the pool's current tick down to the nearest spacing
// boundary for its fee tier. A nil current tick yields nil; so does a
// current tick of exactly zero, reproducing upstream behavior where tick 0
// short-circuits the same as "unknown" (see DESIGN.md).
func ActiveTick(currentTick *int32, feeBps uint32) *int32 {
	if currentTick == nil || *currentTick == 0 {
		return nil
	}
	spacing := SpacingForFee(feeBps)
	snapped := floorDiv(*currentTick, spacing) * spacing
	return &snapped
}

// floorDiv divides rounding toward negative infinity, so negative ticks
// snap downward rather than toward zero.
func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
