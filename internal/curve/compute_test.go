package curve

import (
	"math/big"
	"reflect"
	"testing"

	"depthcurve/internal/model"
)

func computeInput(currentTick int32, liquidity int64, ticks []Tick) Input {
	return Input{
		State:            model.PoolExists,
		CurrentTick:      &currentTick,
		CurrentLiquidity: big.NewInt(liquidity),
		FeeBps:           3000,
		Decimals0:        18,
		Decimals1:        18,
		Ticks:            ticks,
	}
}

func netTicks(t *testing.T, pairs ...int64) []Tick {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("pairs must be index,net couples")
	}
	ticks := make([]Tick, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		ticks = append(ticks, Tick{
			Index:          int32(pairs[i]),
			LiquidityNet:   big.NewInt(pairs[i+1]),
			LiquidityGross: big.NewInt(0),
		})
	}
	return ticks
}

func actives(result Result) []string {
	out := make([]string, 0, len(result.Data))
	for _, tick := range result.Data {
		out = append(out, tick.LiquidityActive.String())
	}
	return out
}

func indices(result Result) []int32 {
	out := make([]int32, 0, len(result.Data))
	for _, tick := range result.Data {
		out = append(out, tick.TickIndex)
	}
	return out
}

func TestComputeScenario(t *testing.T) {
	ticks := netTicks(t, -60, 100, 0, -50, 60, 200)
	result := Compute(computeInput(1, 1000, ticks), nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	if result.ActiveTick == nil || *result.ActiveTick != 0 {
		t.Fatalf("active tick: got %v, want 0", result.ActiveTick)
	}
	if got, want := indices(result), []int32{-60, 0, 60}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tick indices: got %v, want %v", got, want)
	}
	if got, want := actives(result), []string{"1050", "1000", "1200"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("active liquidity: got %v, want %v", got, want)
	}
}

func TestComputeSeedAtInitializedTick(t *testing.T) {
	ticks := netTicks(t, -60, 100, 60, 500, 120, -30)
	result := Compute(computeInput(60, 10000, ticks), nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	active := result.Data[1]
	if active.TickIndex != 60 {
		t.Fatalf("active record tick: got %d, want 60", active.TickIndex)
	}
	if active.LiquidityNet.String() != "500" {
		t.Fatalf("active record net: got %s, want 500", active.LiquidityNet)
	}
	if active.LiquidityActive.String() != "10000" {
		t.Fatalf("active record liquidity: got %s, want 10000", active.LiquidityActive)
	}
}

func TestComputeSynthesizedActiveTick(t *testing.T) {
	ticks := netTicks(t, -60, 100, 0, -50, 60, 200, 120, -80)
	in := computeInput(90, 1000, ticks)
	// Spacing 1 keeps the active tick at 90, between initialized boundaries.
	in.FeeBps = 100
	result := Compute(in, nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	if got, want := indices(result), []int32{-60, 0, 60, 90, 120}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tick indices: got %v, want %v", got, want)
	}

	var synthesized *ProcessedTick
	for i := range result.Data {
		if result.Data[i].TickIndex == 90 {
			synthesized = &result.Data[i]
		}
	}
	if synthesized == nil {
		t.Fatalf("synthesized active record missing")
	}
	if synthesized.LiquidityNet.Sign() != 0 {
		t.Fatalf("synthesized net: got %s, want 0", synthesized.LiquidityNet)
	}
	if synthesized.LiquidityActive.String() != "1000" {
		t.Fatalf("synthesized liquidity: got %s, want 1000", synthesized.LiquidityActive)
	}

	// The initialized boundary at the pivot still carries the seed value:
	// no tick is crossed between it and the active tick.
	if got := actives(result); !reflect.DeepEqual(got, []string{"850", "800", "1000", "1000", "920"}) {
		t.Fatalf("active liquidity: got %v", got)
	}
}

func TestComputeSingleTick(t *testing.T) {
	ticks := netTicks(t, 60, 500)
	result := Compute(computeInput(60, 10000, ticks), nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	if len(result.Data) != 1 {
		t.Fatalf("records: got %d, want 1", len(result.Data))
	}
	if result.Data[0].TickIndex != 60 || result.Data[0].LiquidityActive.String() != "10000" {
		t.Fatalf("unexpected record: %+v", result.Data[0])
	}
}

func TestComputeConservation(t *testing.T) {
	ticks := netTicks(t, -180, 40, -120, 300, -60, 100, 0, -50, 60, 200, 120, -80, 180, -10)
	result := Compute(computeInput(1, 1000, ticks), nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	for i := 0; i+1 < len(result.Data); i++ {
		diff := new(big.Int).Sub(result.Data[i+1].LiquidityActive, result.Data[i].LiquidityActive)
		if diff.Cmp(result.Data[i+1].LiquidityNet) != 0 {
			t.Fatalf("conservation violated between %d and %d: diff %s, net %s",
				result.Data[i].TickIndex, result.Data[i+1].TickIndex, diff, result.Data[i+1].LiquidityNet)
		}
	}
	for _, tick := range result.Data {
		if tick.LiquidityActive.Sign() < 0 {
			t.Fatalf("negative active liquidity at tick %d: %s", tick.TickIndex, tick.LiquidityActive)
		}
	}
}

func TestComputeOrderingStrict(t *testing.T) {
	ticks := netTicks(t, -120, 10, -60, 100, 0, -50, 60, 200, 120, -80)
	result := Compute(computeInput(90, 1000, ticks), nil)

	if result.Status != StatusReady {
		t.Fatalf("status: got %s, want ready", result.Status)
	}
	for i := 0; i+1 < len(result.Data); i++ {
		if result.Data[i+1].TickIndex <= result.Data[i].TickIndex {
			t.Fatalf("tick indices not strictly ascending: %d then %d",
				result.Data[i].TickIndex, result.Data[i+1].TickIndex)
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	ticks := netTicks(t, -60, 100, 0, -50, 60, 200)
	first := Compute(computeInput(1, 1000, ticks), nil)
	second := Compute(computeInput(1, 1000, ticks), nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ across identical invocations")
	}
}

func TestComputePivotNotFound(t *testing.T) {
	ticks := netTicks(t, 60, 100, 120, -50)
	result := Compute(computeInput(-120, 1000, ticks), nil)

	if result.Status != StatusError {
		t.Fatalf("status: got %s, want error", result.Status)
	}
	if result.Data != nil {
		t.Fatalf("data should be nil on pivot-not-found")
	}
}

func TestComputeNotReady(t *testing.T) {
	ticks := netTicks(t, -60, 100, 60, -100)

	cases := []struct {
		name string
		in   Input
		want Status
	}{
		{"pool loading", Input{State: model.PoolLoading, Ticks: ticks}, StatusLoading},
		{"pool missing", Input{State: model.PoolNotExists, Ticks: ticks}, StatusUninitialized},
		{"no current tick", Input{State: model.PoolExists, CurrentLiquidity: big.NewInt(1), Ticks: ticks}, StatusLoading},
		{"no liquidity", func() Input {
			in := computeInput(60, 0, ticks)
			in.CurrentLiquidity = nil
			return in
		}(), StatusLoading},
		{"no ticks", computeInput(60, 1000, nil), StatusLoading},
		{"zero tick quirk", computeInput(0, 1000, ticks), StatusLoading},
	}

	for _, tc := range cases {
		result := Compute(tc.in, nil)
		if result.Status != tc.want {
			t.Fatalf("%s: status got %s, want %s", tc.name, result.Status, tc.want)
		}
		if result.Data != nil {
			t.Fatalf("%s: data should be nil", tc.name)
		}
	}
}

func TestResultSnapshot(t *testing.T) {
	ticks := netTicks(t, -60, 100, 0, -50, 60, 200)
	result := Compute(computeInput(1, 1000, ticks), nil)

	snapshot := result.Snapshot(56, "0x1111111111111111111111111111111111111111", 36000000, "2024-01-01T00:00:00Z")
	if snapshot.Status != "ready" {
		t.Fatalf("snapshot status: got %s", snapshot.Status)
	}
	if len(snapshot.Points) != 3 {
		t.Fatalf("snapshot points: got %d, want 3", len(snapshot.Points))
	}
	if snapshot.Points[0].LiquidityActive != "1050" {
		t.Fatalf("first point liquidity: got %s, want 1050", snapshot.Points[0].LiquidityActive)
	}
	if snapshot.Points[1].Price0 == "" {
		t.Fatalf("snapshot point missing price0")
	}
}
