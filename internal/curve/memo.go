package curve

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Memoizer caches curve results keyed by a fingerprint of the transform
// inputs, so a poll cycle that observes an unchanged snapshot skips the
// recomputation entirely.
type Memoizer struct {
	cache  *lru.Cache[string, Result]
	logger *zap.Logger
}

func NewMemoizer(size int, logger *zap.Logger) (*Memoizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	return &Memoizer{cache: cache, logger: logger}, nil
}

// Compute returns the cached result for an identical input, computing and
// caching it otherwise. Results are shared between callers and must be
// treated as read-only.
func (m *Memoizer) Compute(in Input) Result {
	key := fingerprint(in)
	if result, ok := m.cache.Get(key); ok {
		return result
	}
	result := Compute(in, m.logger)
	m.cache.Add(key, result)
	return result
}

// fingerprint folds every input the transform depends on into a cache key:
// pool state, fee tier, decimals, current tick, current liquidity, and an
// FNV-64a digest of the tick sequence.
func fingerprint(in Input) string {
	digest := fnv.New64a()
	var buf [8]byte
	for _, tick := range in.Ticks {
		binary.BigEndian.PutUint32(buf[:4], uint32(tick.Index))
		digest.Write(buf[:4])
		digest.Write(tick.LiquidityNet.Bytes())
		buf[0] = byte(tick.LiquidityNet.Sign() + 1)
		digest.Write(buf[:1])
		digest.Write(tick.LiquidityGross.Bytes())
	}

	currentTick := "nil"
	if in.CurrentTick != nil {
		currentTick = fmt.Sprintf("%d", *in.CurrentTick)
	}
	liquidity := "nil"
	if in.CurrentLiquidity != nil {
		liquidity = in.CurrentLiquidity.String()
	}

	return fmt.Sprintf("%s|%d|%d|%d|%s|%s|%d|%016x",
		in.State, in.FeeBps, in.Decimals0, in.Decimals1, currentTick, liquidity, len(in.Ticks), digest.Sum64())
}
