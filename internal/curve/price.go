package curve

import (
	"math/big"

	"depthcurve/internal/dex"
)

// priceFixedDigits is the number of fractional digits rendered for price0.
const priceFixedDigits = 8

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// PriceAtTick renders the price of token0 in token1 at a tick: 1.0001^tick
// scaled by the difference in token decimals, with 8 fractional digits.
func PriceAtTick(tick int32, decimals0, decimals1 uint8) (string, error) {
	sqrtRatio, err := dex.SqrtRatioAtTick(tick)
	if err != nil {
		return "", err
	}

	ratio := new(big.Int).Mul(sqrtRatio, sqrtRatio)
	price := new(big.Rat).SetFrac(ratio, q192)

	switch {
	case decimals0 > decimals1:
		price.Mul(price, new(big.Rat).SetInt(pow10(decimals0-decimals1)))
	case decimals1 > decimals0:
		price.Quo(price, new(big.Rat).SetInt(pow10(decimals1-decimals0)))
	}

	return price.FloatString(priceFixedDigits), nil
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
