package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"depthcurve/internal/curve"
	"depthcurve/internal/model"
	"depthcurve/internal/ticksource"
)

// newComputeCommand builds the one-shot compute command. It takes pool
// parameters from flags instead of an RPC node, so curves can be rebuilt
// offline from a recorded tick snapshot.
func newComputeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a liquidity curve from a tick snapshot",
		RunE:  runCompute,
	}

	cmd.Flags().String("ticks", "", "tick snapshot JSONL path")
	cmd.Flags().Int32("tick", 0, "current pool tick")
	cmd.Flags().String("liquidity", "", "current pool liquidity")
	cmd.Flags().Uint32("fee", 3000, "pool fee in hundredths of a bip")
	cmd.Flags().Uint8("decimals0", 18, "token0 decimals")
	cmd.Flags().Uint8("decimals1", 18, "token1 decimals")
	cmd.Flags().String("pool", "", "pool address label for the output")
	cmd.Flags().Uint64("chain-id", 0, "chain id label for the output")
	cmd.Flags().String("out", "", "output path, empty means stdout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runCompute(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	logLevel, _ := flags.GetString("log-level")
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ticksPath, _ := flags.GetString("ticks")
	if ticksPath == "" {
		return fmt.Errorf("ticks path is required")
	}

	records, err := ticksource.NewFileSource(ticksPath).Load()
	if err != nil {
		return err
	}
	ticks, err := curve.ParseTicks(records)
	if err != nil {
		return err
	}

	input := curve.Input{
		State: model.PoolExists,
		Ticks: ticks,
	}
	input.FeeBps, _ = flags.GetUint32("fee")
	input.Decimals0, _ = flags.GetUint8("decimals0")
	input.Decimals1, _ = flags.GetUint8("decimals1")

	if flags.Changed("tick") {
		tick, _ := flags.GetInt32("tick")
		input.CurrentTick = &tick
	}

	if raw, _ := flags.GetString("liquidity"); raw != "" {
		liquidity, ok := new(big.Int).SetString(raw, 10)
		if !ok || liquidity.Sign() < 0 {
			return fmt.Errorf("invalid liquidity: %q", raw)
		}
		input.CurrentLiquidity = liquidity
	}

	result := curve.Compute(input, logger)

	pool, _ := flags.GetString("pool")
	chainID, _ := flags.GetUint64("chain-id")
	snapshot := result.Snapshot(chainID, pool, 0, time.Now().UTC().Format(time.RFC3339Nano))

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	out, _ := flags.GetString("out")
	if out == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(out, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("compute complete",
		zap.String("status", string(result.Status)),
		zap.Int("ticks", len(ticks)),
		zap.Int("points", len(result.Data)),
	)
	return nil
}
