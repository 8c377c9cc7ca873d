package watcher

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"depthcurve/internal/curve"
	"depthcurve/internal/model"
	"depthcurve/internal/storage"
)

type fakeChain struct{}

func (fakeChain) ChainID(ctx context.Context) (*big.Int, error)      { return big.NewInt(56), nil }
func (fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) { return 36000000, nil }

type fakeResolver struct {
	snapshot model.PoolSnapshot
}

func (r fakeResolver) Snapshot(ctx context.Context, pool common.Address) (model.PoolSnapshot, error) {
	return r.snapshot, nil
}

type fakeSource struct {
	records []model.TickRecord
}

func (s fakeSource) Load() ([]model.TickRecord, error) { return s.records, nil }

type captureSink struct {
	mu        sync.Mutex
	snapshots []model.CurveSnapshot
}

func (s *captureSink) PutCurveSnapshot(snapshot model.CurveSnapshot) error {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, snapshot)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *captureSink) first() model.CurveSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[0]
}

func existingPool() model.PoolSnapshot {
	tick := int32(1)
	return model.PoolSnapshot{
		State:       model.PoolExists,
		Address:     "0x1111111111111111111111111111111111111111",
		Token0:      model.TokenMeta{Decimals: 18},
		Token1:      model.TokenMeta{Decimals: 18},
		Fee:         3000,
		TickSpacing: 60,
		CurrentTick: &tick,
		Liquidity:   "1000",
	}
}

func TestWatcherEmitsSnapshot(t *testing.T) {
	records := []model.TickRecord{
		{TickIndex: -60, LiquidityNet: "100", LiquidityGross: "100"},
		{TickIndex: 0, LiquidityNet: "-50", LiquidityGross: "50"},
		{TickIndex: 60, LiquidityNet: "200", LiquidityGross: "200"},
	}

	memo, err := curve.NewMemoizer(4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := &captureSink{}
	w := New(Config{
		Pool:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Interval: 10 * time.Millisecond,
	}, fakeChain{}, fakeResolver{snapshot: existingPool()}, fakeSource{records: records}, []storage.Sink{sink}, memo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("no snapshot emitted")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}

	snapshot := sink.first()
	if snapshot.ChainID != 56 || snapshot.BlockNumber != 36000000 {
		t.Fatalf("unexpected snapshot identity: %+v", snapshot)
	}
	if snapshot.Status != "ready" {
		t.Fatalf("snapshot status: got %s, want ready", snapshot.Status)
	}
	if len(snapshot.Points) != 3 {
		t.Fatalf("snapshot points: got %d, want 3", len(snapshot.Points))
	}
}

func TestBuildInput(t *testing.T) {
	ticks, err := curve.ParseTicks([]model.TickRecord{{TickIndex: 0, LiquidityNet: "1", LiquidityGross: "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input, err := buildInput(existingPool(), ticks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.CurrentLiquidity == nil || input.CurrentLiquidity.String() != "1000" {
		t.Fatalf("liquidity: got %v, want 1000", input.CurrentLiquidity)
	}
	if input.FeeBps != 3000 || input.Decimals0 != 18 {
		t.Fatalf("unexpected input: %+v", input)
	}

	loading := model.PoolSnapshot{State: model.PoolLoading}
	input, err = buildInput(loading, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.CurrentLiquidity != nil {
		t.Fatalf("loading pool should carry no liquidity")
	}

	bad := existingPool()
	bad.Liquidity = "not-a-number"
	if _, err := buildInput(bad, nil); err == nil {
		t.Fatalf("expected error for invalid liquidity")
	}
}

func TestWithRetryBackoff(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: got %d, want 3", attempts)
	}
}

func TestWithRetryExhausted(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return errors.New("always")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("attempts: got %d, want 3", attempts)
	}
}
