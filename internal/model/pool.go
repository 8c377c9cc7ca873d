package model

// PoolState describes whether a pool could be resolved on chain.
type PoolState string

const (
	PoolNotExists PoolState = "not_exists"
	PoolLoading   PoolState = "loading"
	PoolExists    PoolState = "exists"
)

// PoolSnapshot is the resolved pool state for one poll cycle. Live fields
// are optional: they stay empty while the pool is loading.
type PoolSnapshot struct {
	State        PoolState `json:"state"`
	Address      string    `json:"address"`
	BlockNumber  uint64    `json:"block_number,omitempty"`
	Token0       TokenMeta `json:"token0,omitempty"`
	Token1       TokenMeta `json:"token1,omitempty"`
	Fee          uint32    `json:"fee,omitempty"`
	TickSpacing  int32     `json:"tick_spacing,omitempty"`
	CurrentTick  *int32    `json:"current_tick,omitempty"`
	Liquidity    string    `json:"liquidity,omitempty"`
	SqrtPriceX96 string    `json:"sqrt_price_x96,omitempty"`
}
