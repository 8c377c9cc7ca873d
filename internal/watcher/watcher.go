package watcher

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"depthcurve/internal/curve"
	"depthcurve/internal/model"
	"depthcurve/internal/storage"
	"depthcurve/internal/ticksource"
)

// ChainInfo supplies the chain identity and head position.
type ChainInfo interface {
	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// PoolResolver resolves the live state of a pool.
type PoolResolver interface {
	Snapshot(ctx context.Context, pool common.Address) (model.PoolSnapshot, error)
}

// Config holds runtime settings for the watcher.
type Config struct {
	Pool         common.Address
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Watcher periodically resolves pool state, loads the latest tick
// snapshot, recomputes the liquidity curve, and emits the result.
type Watcher struct {
	cfg      Config
	chain    ChainInfo
	resolver PoolResolver
	source   ticksource.Source
	sinks    []storage.Sink
	memo     *curve.Memoizer
	state    StateStore
	logger   *zap.Logger
}

// New builds a Watcher with its dependencies.
func New(cfg Config, chainInfo ChainInfo, resolver PoolResolver, source ticksource.Source, sinks []storage.Sink, memo *curve.Memoizer, state StateStore, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cfg:      cfg,
		chain:    chainInfo,
		resolver: resolver,
		source:   source,
		sinks:    sinks,
		memo:     memo,
		state:    state,
		logger:   logger,
	}
}

// Run executes the polling loop until the context is cancelled. Transient
// failures inside a cycle are logged and retried on the next tick; they
// never abort the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if w.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if w.resolver == nil {
		return fmt.Errorf("pool resolver is nil")
	}
	if w.source == nil {
		return fmt.Errorf("tick source is nil")
	}
	if w.memo == nil {
		return fmt.Errorf("memoizer is nil")
	}
	if w.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	chainID, err := w.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	if w.state != nil {
		if last, ok, err := w.state.Load(ctx); err != nil {
			return err
		} else if ok {
			w.logger.Info("resume", zap.Uint64("last_computed_ts", last))
		}
	}

	w.cycle(ctx, chainIDValue)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.cycle(ctx, chainIDValue)
		}
	}
}

func (w *Watcher) cycle(ctx context.Context, chainID uint64) {
	blockNumber, err := w.latestBlockWithRetry(ctx)
	if err != nil {
		w.logger.Warn("latest block fetch failed", zap.Error(err))
		return
	}

	poolSnapshot, err := w.poolSnapshotWithRetry(ctx)
	if err != nil {
		w.logger.Warn("pool state fetch failed", zap.String("pool", w.cfg.Pool.Hex()), zap.Error(err))
		return
	}

	records, err := w.source.Load()
	if err != nil {
		w.logger.Warn("tick snapshot load failed", zap.Error(err))
		return
	}
	ticks, err := curve.ParseTicks(records)
	if err != nil {
		w.logger.Error("tick snapshot malformed", zap.Error(err))
		return
	}

	input, err := buildInput(poolSnapshot, ticks)
	if err != nil {
		w.logger.Error("pool snapshot malformed", zap.Error(err))
		return
	}

	result := w.memo.Compute(input)

	snapshot := result.Snapshot(chainID, poolSnapshot.Address, blockNumber, time.Now().UTC().Format(time.RFC3339Nano))
	for _, sink := range w.sinks {
		if err := sink.PutCurveSnapshot(snapshot); err != nil {
			w.logger.Warn("store curve snapshot failed", zap.Error(err))
		}
	}

	if result.Status == curve.StatusReady && w.state != nil {
		if err := w.state.Save(ctx, uint64(time.Now().Unix())); err != nil {
			w.logger.Warn("save state failed", zap.Error(err))
		}
	}

	w.logger.Info("cycle complete",
		zap.Uint64("block", blockNumber),
		zap.String("status", string(result.Status)),
		zap.Int("ticks", len(ticks)),
		zap.Int("points", len(result.Data)),
	)
}

// buildInput maps a resolved pool snapshot onto the transform input.
func buildInput(snapshot model.PoolSnapshot, ticks []curve.Tick) (curve.Input, error) {
	input := curve.Input{
		State:       snapshot.State,
		CurrentTick: snapshot.CurrentTick,
		FeeBps:      snapshot.Fee,
		Decimals0:   snapshot.Token0.Decimals,
		Decimals1:   snapshot.Token1.Decimals,
		Ticks:       ticks,
	}
	if snapshot.Liquidity != "" {
		liquidity, ok := new(big.Int).SetString(snapshot.Liquidity, 10)
		if !ok {
			return curve.Input{}, fmt.Errorf("invalid pool liquidity: %s", snapshot.Liquidity)
		}
		if liquidity.Sign() < 0 {
			return curve.Input{}, fmt.Errorf("negative pool liquidity: %s", snapshot.Liquidity)
		}
		input.CurrentLiquidity = liquidity
	}
	return input, nil
}

func (w *Watcher) latestBlockWithRetry(ctx context.Context) (uint64, error) {
	var blockNumber uint64
	err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		blockNumber, err = w.chain.LatestBlockNumber(ctx)
		return err
	})
	return blockNumber, err
}

func (w *Watcher) poolSnapshotWithRetry(ctx context.Context) (model.PoolSnapshot, error) {
	var snapshot model.PoolSnapshot
	err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		snapshot, err = w.resolver.Snapshot(ctx, w.cfg.Pool)
		return err
	})
	return snapshot, err
}
