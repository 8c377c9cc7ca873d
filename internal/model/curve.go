package model

// CurvePoint is one record of the computed liquidity curve.
type CurvePoint struct {
	TickIndex       int32  `json:"tick_index"`
	LiquidityActive string `json:"liquidity_active"`
	LiquidityNet    string `json:"liquidity_net"`
	Price0          string `json:"price0"`
}

// CurveSnapshot is the persisted result of one curve computation.
type CurveSnapshot struct {
	ChainID     uint64       `json:"chain_id"`
	PoolAddress string       `json:"pool_address"`
	BlockNumber uint64       `json:"block_number"`
	ComputedAt  string       `json:"computed_at"`
	Status      string       `json:"status"`
	ActiveTick  *int32       `json:"active_tick,omitempty"`
	Points      []CurvePoint `json:"points,omitempty"`
}
