package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"depthcurve/internal/chain"
	"depthcurve/internal/model"
)

// poolImmutable holds the pool fields that never change after deployment.
type poolImmutable struct {
	Token0      model.TokenMeta
	Token1      model.TokenMeta
	Fee         uint32
	TickSpacing int32
}

// Resolver fetches pool state through eth_call and caches immutable pool
// and token metadata between polls.
type Resolver struct {
	chain  *chain.Client
	logger *zap.Logger

	mu     sync.RWMutex
	meta   map[common.Address]poolImmutable
	tokens map[common.Address]model.TokenMeta
}

func NewResolver(chainClient *chain.Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		chain:  chainClient,
		logger: logger,
		meta:   make(map[common.Address]poolImmutable),
		tokens: make(map[common.Address]model.TokenMeta),
	}
}

// Snapshot resolves the pool's current state. A pool with no code yields
// state not_exists; failures on the live fields (liquidity, slot0) degrade
// to state loading so the caller can retry on the next poll.
func (r *Resolver) Snapshot(ctx context.Context, pool common.Address) (model.PoolSnapshot, error) {
	if r.chain == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain client is nil")
	}

	code, err := r.chain.CodeAt(ctx, pool)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("code at %s: %w", pool.Hex(), err)
	}
	if len(code) == 0 {
		return model.PoolSnapshot{State: model.PoolNotExists, Address: pool.Hex()}, nil
	}

	immutable, err := r.immutableMeta(ctx, pool)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	snapshot := model.PoolSnapshot{
		State:       model.PoolExists,
		Address:     pool.Hex(),
		Token0:      immutable.Token0,
		Token1:      immutable.Token1,
		Fee:         immutable.Fee,
		TickSpacing: immutable.TickSpacing,
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse pool abi: %w", err)
	}

	liquidityValues, liqErr := r.callPool(ctx, pool, poolABI, "liquidity")
	slot0Values, slotErr := r.callPool(ctx, pool, poolABI, "slot0")
	if liqErr != nil || slotErr != nil || len(slot0Values) < 2 {
		r.logger.Warn("pool live state unavailable",
			zap.String("pool", pool.Hex()),
			zap.NamedError("liquidity_err", liqErr),
			zap.NamedError("slot0_err", slotErr),
		)
		snapshot.State = model.PoolLoading
		return snapshot, nil
	}

	liquidity, err := asBigInt(liquidityValues[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("liquidity: %w", err)
	}
	sqrtPrice, err := asBigInt(slot0Values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(slot0Values[1])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tick: %w", err)
	}

	snapshot.Liquidity = liquidity.String()
	snapshot.SqrtPriceX96 = sqrtPrice.String()
	snapshot.CurrentTick = &tick
	return snapshot, nil
}

func (r *Resolver) immutableMeta(ctx context.Context, pool common.Address) (poolImmutable, error) {
	r.mu.RLock()
	cached, ok := r.meta[pool]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return poolImmutable{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := r.callPool(ctx, pool, poolABI, "token0")
	if err != nil {
		return poolImmutable{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return poolImmutable{}, fmt.Errorf("token0: %w", err)
	}

	values, err = r.callPool(ctx, pool, poolABI, "token1")
	if err != nil {
		return poolImmutable{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return poolImmutable{}, fmt.Errorf("token1: %w", err)
	}

	values, err = r.callPool(ctx, pool, poolABI, "fee")
	if err != nil {
		return poolImmutable{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return poolImmutable{}, fmt.Errorf("fee: %w", err)
	}

	values, err = r.callPool(ctx, pool, poolABI, "tickSpacing")
	if err != nil {
		return poolImmutable{}, err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return poolImmutable{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return poolImmutable{}, fmt.Errorf("tick spacing: %w", err)
	}

	token0Meta, err := r.tokenMeta(ctx, token0)
	if err != nil {
		return poolImmutable{}, fmt.Errorf("token0 meta: %w", err)
	}
	token1Meta, err := r.tokenMeta(ctx, token1)
	if err != nil {
		return poolImmutable{}, fmt.Errorf("token1 meta: %w", err)
	}

	immutable := poolImmutable{
		Token0:      token0Meta,
		Token1:      token1Meta,
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: spacing,
	}

	r.mu.Lock()
	r.meta[pool] = immutable
	r.mu.Unlock()
	return immutable, nil
}

// tokenMeta loads ERC20 decimals (required) plus symbol and name (best
// effort) for a token, caching the result.
func (r *Resolver) tokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	r.mu.RLock()
	cached, ok := r.tokens[token]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	erc20, err := ERC20MetaABI()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	meta := model.TokenMeta{Address: token.Hex()}

	values, err := r.call(ctx, token, erc20, "decimals")
	if err != nil {
		return model.TokenMeta{}, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("decimals: %w", err)
	}
	meta.Decimals = decimals

	if values, err := r.call(ctx, token, erc20, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}
	if values, err := r.call(ctx, token, erc20, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else {
		r.logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	r.mu.Lock()
	r.tokens[token] = meta
	r.mu.Unlock()
	return meta, nil
}

func (r *Resolver) callPool(ctx context.Context, pool common.Address, poolABI abi.ABI, method string) ([]interface{}, error) {
	return r.call(ctx, pool, poolABI, method)
}

func (r *Resolver) call(ctx context.Context, target common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := r.chain.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
