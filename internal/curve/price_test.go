package curve

import (
	"strings"
	"testing"
)

func TestPriceAtTickUnit(t *testing.T) {
	cases := []struct {
		tick      int32
		decimals0 uint8
		decimals1 uint8
		want      string
	}{
		{0, 18, 18, "1.00000000"},
		{1, 18, 18, "1.00010000"},
		{-1, 18, 18, "0.99990001"},
		{0, 8, 6, "100.00000000"},
		{0, 6, 8, "0.01000000"},
	}
	for _, tc := range cases {
		got, err := PriceAtTick(tc.tick, tc.decimals0, tc.decimals1)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tc.tick, err)
		}
		if got != tc.want {
			t.Fatalf("tick %d (%d/%d decimals): got %s, want %s", tc.tick, tc.decimals0, tc.decimals1, got, tc.want)
		}
	}
}

func TestPriceAtTickFractionalDigits(t *testing.T) {
	price, err := PriceAtTick(-57060, 18, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(price, ".")
	if len(parts) != 2 || len(parts[1]) != 8 {
		t.Fatalf("price %q does not carry 8 fractional digits", price)
	}
}

func TestPriceAtTickOutOfRange(t *testing.T) {
	if _, err := PriceAtTick(887273, 18, 18); err == nil {
		t.Fatalf("expected error for tick above range")
	}
}
