package dex

import (
	"fmt"
	"math/big"
)

// Tick bounds from the V3 core TickMath library.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	// Q128.128 multipliers for sqrt(1.0001^-(2^i)); sqrtRatioBase covers
	// bit 0 of the absolute tick, sqrtRatioMultipliers bits 1..19.
	sqrtRatioBase = hexBig("fffcb933bd6fad37aa2d162d1a594001")
	sqrtRatioOne  = hexBig("100000000000000000000000000000000")

	sqrtRatioMultipliers = []*big.Int{
		hexBig("fff97272373d413259a46990580e213a"),
		hexBig("fff2e50f5f656932ef12357cf3c7fdcc"),
		hexBig("ffe5caca7e10e4e61c3624eaa0941cd0"),
		hexBig("ffcb9843d60f6159c9db58835c926644"),
		hexBig("ff973b41fa98c081472e6896dfb254c0"),
		hexBig("ff2ea16466c96a3843ec78b326b52861"),
		hexBig("fe5dee046a99a2a811c461f1969c3053"),
		hexBig("fcbe86c7900a88aedcffc83b479aa3a4"),
		hexBig("f987a7253ac413176f2b074cf7815e54"),
		hexBig("f3392b0822b70005940c7a398e4b70f3"),
		hexBig("e7159475a2c29b7443b29c7fa6e889d9"),
		hexBig("d097f3bdfd2022b8845ad8f792aa5825"),
		hexBig("a9f746462d870fdf8a65dc1f90e061e5"),
		hexBig("70d869a156d2a1b890bb3df62baf32f7"),
		hexBig("31be135f97d08fd981231505542fcfa6"),
		hexBig("9aa508b5b7a84e1c677de54f3e99bc9"),
		hexBig("5d6af8dedb81196699c329225ee604"),
		hexBig("2216e584f5fa1ea926041bedfe98"),
		hexBig("48a170391f7dc42444e8fa2"),
	}

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as an unsigned Q64.96.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("tick out of range: %d", tick)
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(big.Int)
	if absTick&0x1 != 0 {
		ratio.Set(sqrtRatioBase)
	} else {
		ratio.Set(sqrtRatioOne)
	}
	for i, multiplier := range sqrtRatioMultipliers {
		if absTick&(1<<(uint(i)+1)) != 0 {
			mulShift(ratio, multiplier)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Round up the Q128.128 to Q64.96.
	remainder := new(big.Int).And(ratio, big.NewInt((1<<32)-1))
	ratio.Rsh(ratio, 32)
	if remainder.Sign() != 0 {
		ratio.Add(ratio, big.NewInt(1))
	}

	return ratio, nil
}

func mulShift(ratio *big.Int, multiplier *big.Int) {
	ratio.Mul(ratio, multiplier)
	ratio.Rsh(ratio, 128)
}

func hexBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex constant: " + s)
	}
	return n
}
