package curve

import "math/big"

type priceFunc func(tick int32) (string, error)

// walkSurrounding produces the processed ticks on one side of the active
// record, accumulating liquidity outward from the pivot.
//
// Ascending: starts just above the pivot; each tick's active liquidity is
// the previous value plus the tick's own net delta (net deltas are defined
// for upward crossings).
//
// Descending: starts at the pivot itself when the pivot tick is not the
// active tick (so the pivot boundary still gets a record), otherwise just
// below it; each tick's active liquidity is the previous record's value
// minus the previous record's net delta. Records come out in descending
// order and are reversed before return.
func walkSurrounding(ticks []Tick, active ProcessedTick, pivot int, ascending bool, price priceFunc) ([]ProcessedTick, error) {
	start := pivot + 1
	if !ascending {
		start = pivot
		if pivot >= 0 && pivot < len(ticks) && ticks[pivot].Index == active.TickIndex {
			start = pivot - 1
		}
	}

	previous := active
	var processed []ProcessedTick

	for i := start; ascending && i < len(ticks) || !ascending && i >= 0; {
		tick := ticks[i]

		price0, err := price(tick.Index)
		if err != nil {
			return nil, err
		}

		record := ProcessedTick{
			TickIndex:       tick.Index,
			LiquidityActive: new(big.Int).Set(previous.LiquidityActive),
			LiquidityNet:    new(big.Int).Set(tick.LiquidityNet),
			Price0:          price0,
		}

		if ascending {
			record.LiquidityActive.Add(previous.LiquidityActive, tick.LiquidityNet)
		} else if previous.LiquidityNet.Sign() != 0 {
			record.LiquidityActive.Sub(previous.LiquidityActive, previous.LiquidityNet)
		}

		processed = append(processed, record)
		previous = record

		if ascending {
			i++
		} else {
			i--
		}
	}

	if !ascending {
		reverse(processed)
	}
	return processed, nil
}

func reverse(ticks []ProcessedTick) {
	for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
		ticks[i], ticks[j] = ticks[j], ticks[i]
	}
}
