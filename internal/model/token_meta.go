package model

// TokenMeta describes one side of a pool pair. Decimals drive the
// price scaling of curve points; symbol and name are display only.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}
