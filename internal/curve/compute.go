package curve

import (
	"math/big"

	"go.uber.org/zap"

	"depthcurve/internal/model"
)

// Status tags the outcome of a curve computation. Failure states are data,
// not errors: the transform runs on every poll cycle and must degrade to
// "no data yet" without breaking the caller's loop.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusUninitialized Status = "uninitialized"
	StatusError         Status = "error"
	StatusReady         Status = "ready"
)

// Input is one snapshot of everything the transform depends on.
type Input struct {
	State            model.PoolState
	CurrentTick      *int32
	CurrentLiquidity *big.Int
	FeeBps           uint32
	Decimals0        uint8
	Decimals1        uint8
	Ticks            []Tick
}

// Result is the computed liquidity curve. Data is nil unless Status is
// ready; it is then strictly ascending by tick index with exactly one
// record for the active tick.
type Result struct {
	ActiveTick *int32
	Data       []ProcessedTick
	Status     Status
}

// Compute reconstructs the active liquidity distribution from a pool
// snapshot and its initialized ticks. Pure and synchronous: identical
// inputs yield identical results, and independent inputs are safe to
// compute concurrently.
func Compute(in Input, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch in.State {
	case model.PoolNotExists:
		return Result{Status: StatusUninitialized}
	case model.PoolExists:
	default:
		return Result{Status: StatusLoading}
	}

	activeTick := ActiveTick(in.CurrentTick, in.FeeBps)
	if activeTick == nil || in.CurrentLiquidity == nil || len(in.Ticks) == 0 {
		return Result{ActiveTick: activeTick, Status: StatusLoading}
	}

	pivot := Pivot(in.Ticks, *activeTick)
	if pivot < 0 {
		// In a well-formed pool the lowest initialized tick is at or below
		// any reachable active tick; reaching this means the supplied tick
		// range is too narrow.
		logger.Error("tick pivot not found",
			zap.Int32("active_tick", *activeTick),
			zap.Int32("lowest_tick", in.Ticks[0].Index),
		)
		return Result{ActiveTick: activeTick, Status: StatusError}
	}

	price := func(tick int32) (string, error) {
		return PriceAtTick(tick, in.Decimals0, in.Decimals1)
	}

	activeNet := big.NewInt(0)
	if in.Ticks[pivot].Index == *activeTick {
		activeNet.Set(in.Ticks[pivot].LiquidityNet)
	}
	activePrice, err := price(*activeTick)
	if err != nil {
		logger.Error("active tick price", zap.Int32("active_tick", *activeTick), zap.Error(err))
		return Result{ActiveTick: activeTick, Status: StatusError}
	}

	activeRecord := ProcessedTick{
		TickIndex:       *activeTick,
		LiquidityActive: new(big.Int).Set(in.CurrentLiquidity),
		LiquidityNet:    activeNet,
		Price0:          activePrice,
	}

	above, err := walkSurrounding(in.Ticks, activeRecord, pivot, true, price)
	if err != nil {
		logger.Error("upward walk", zap.Error(err))
		return Result{ActiveTick: activeTick, Status: StatusError}
	}
	below, err := walkSurrounding(in.Ticks, activeRecord, pivot, false, price)
	if err != nil {
		logger.Error("downward walk", zap.Error(err))
		return Result{ActiveTick: activeTick, Status: StatusError}
	}

	data := make([]ProcessedTick, 0, len(below)+1+len(above))
	data = append(data, below...)
	data = append(data, activeRecord)
	data = append(data, above...)

	return Result{ActiveTick: activeTick, Data: data, Status: StatusReady}
}

// Snapshot converts a result into its persisted form.
func (r Result) Snapshot(chainID uint64, poolAddress string, blockNumber uint64, computedAt string) model.CurveSnapshot {
	snapshot := model.CurveSnapshot{
		ChainID:     chainID,
		PoolAddress: poolAddress,
		BlockNumber: blockNumber,
		ComputedAt:  computedAt,
		Status:      string(r.Status),
		ActiveTick:  r.ActiveTick,
	}
	if len(r.Data) > 0 {
		snapshot.Points = make([]model.CurvePoint, 0, len(r.Data))
		for _, tick := range r.Data {
			snapshot.Points = append(snapshot.Points, model.CurvePoint{
				TickIndex:       tick.TickIndex,
				LiquidityActive: tick.LiquidityActive.String(),
				LiquidityNet:    tick.LiquidityNet.String(),
				Price0:          tick.Price0,
			})
		}
	}
	return snapshot
}
