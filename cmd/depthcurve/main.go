package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"depthcurve/internal/chain"
	"depthcurve/internal/config"
	"depthcurve/internal/curve"
	"depthcurve/internal/dex"
	"depthcurve/internal/storage"
	"depthcurve/internal/storage/postgres"
	"depthcurve/internal/ticksource"
	"depthcurve/internal/watcher"
)

func main() {
	root := &cobra.Command{
		Use:          "depthcurve",
		Short:        "Active liquidity curve calculator for V3 pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a pool and recompute its liquidity curve",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "RPC URL")
	watchCmd.Flags().String("pool", "", "pool contract address")
	watchCmd.Flags().Duration("interval", 15*time.Second, "polling interval")
	watchCmd.Flags().String("ticks", "./data/ticks.jsonl", "tick snapshot JSONL path")
	watchCmd.Flags().String("out", "./data/curves.jsonl", "output JSONL path")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	watchCmd.Flags().String("state-file", "", "optional local state file")
	watchCmd.Flags().Int("memo-size", 16, "memoized results to keep")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)
	root.AddCommand(newComputeCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("invalid pool address: %q", cfg.Pool)
	}
	pool := common.HexToAddress(cfg.Pool)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	resolver := dex.NewResolver(chainClient, logger)
	source := ticksource.NewFileSource(cfg.TicksPath)

	sinks := []storage.Sink{storage.NewJsonlSink(cfg.Out)}

	var state watcher.StateStore
	if cfg.StateFile != "" {
		state = &watcher.FileStateStore{Path: cfg.StateFile}
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
		if state == nil {
			state = &watcher.DBStateStore{Store: store, Name: "watch:" + pool.Hex()}
		}
	}

	memo, err := curve.NewMemoizer(cfg.MemoSize, logger)
	if err != nil {
		return err
	}

	w := watcher.New(watcher.Config{
		Pool:         pool,
		Interval:     cfg.Interval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, resolver, source, sinks, memo, state, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", pool.Hex()),
		zap.Duration("interval", cfg.Interval),
		zap.String("ticks", cfg.TicksPath),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PgDSN)),
	)

	return w.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Host == "" {
		return "set"
	}
	if parsed.User != nil {
		parsed.User = url.User(parsed.User.Username())
	}
	return parsed.Redacted()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
