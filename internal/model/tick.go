package model

// TickRecord is the JSON representation of an initialized tick as produced
// by an upstream indexer. Liquidity values are decimal strings so arbitrary
// precision survives the wire.
type TickRecord struct {
	TickIndex      int32  `json:"tick_index"`
	LiquidityNet   string `json:"liquidity_net"`
	LiquidityGross string `json:"liquidity_gross"`
}
