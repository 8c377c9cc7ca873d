package curve

import (
	"fmt"
	"math/big"

	"depthcurve/internal/model"
)

// Tick is an initialized tick boundary with its parsed liquidity deltas.
type Tick struct {
	Index          int32
	LiquidityNet   *big.Int
	LiquidityGross *big.Int
}

// ProcessedTick is one record of the computed liquidity curve.
type ProcessedTick struct {
	TickIndex       int32
	LiquidityActive *big.Int
	LiquidityNet    *big.Int
	Price0          string
}

// ParseTicks converts wire records into curve ticks. The walker assumes a
// strictly ascending, duplicate-free sequence, so sortedness is asserted
// here and violations fail fast instead of producing a silently wrong curve.
func ParseTicks(records []model.TickRecord) ([]Tick, error) {
	ticks := make([]Tick, 0, len(records))
	for i, record := range records {
		if i > 0 && record.TickIndex <= records[i-1].TickIndex {
			return nil, fmt.Errorf("ticks not strictly ascending at index %d: %d after %d",
				i, record.TickIndex, records[i-1].TickIndex)
		}

		net, err := parseBigInt(record.LiquidityNet)
		if err != nil {
			return nil, fmt.Errorf("tick %d liquidity_net: %w", record.TickIndex, err)
		}
		gross, err := parseBigInt(record.LiquidityGross)
		if err != nil {
			return nil, fmt.Errorf("tick %d liquidity_gross: %w", record.TickIndex, err)
		}
		if gross.Sign() < 0 {
			return nil, fmt.Errorf("tick %d liquidity_gross negative: %s", record.TickIndex, gross)
		}

		ticks = append(ticks, Tick{
			Index:          record.TickIndex,
			LiquidityNet:   net,
			LiquidityGross: gross,
		})
	}
	return ticks, nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}
