package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"depthcurve/internal/model"
)

// Store provides Postgres persistence for curve snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutCurveSnapshot upserts one curve snapshot, points stored as JSONB.
func (s *Store) PutCurveSnapshot(snapshot model.CurveSnapshot) error {
	return s.UpsertCurveSnapshots(context.Background(), []model.CurveSnapshot{snapshot})
}

// UpsertCurveSnapshots inserts or updates a batch of curve snapshots.
func (s *Store) UpsertCurveSnapshots(ctx context.Context, snapshots []model.CurveSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snapshot := range snapshots {
		var points []byte
		if len(snapshot.Points) > 0 {
			encoded, err := json.Marshal(snapshot.Points)
			if err != nil {
				return fmt.Errorf("marshal curve points: %w", err)
			}
			points = encoded
		}

		batch.Queue(`
			INSERT INTO curve_snapshots (
				chain_id, pool_address, block_number, computed_at, status, active_tick, points, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (chain_id, pool_address, block_number)
			DO UPDATE SET
				computed_at = EXCLUDED.computed_at,
				status = EXCLUDED.status,
				active_tick = EXCLUDED.active_tick,
				points = EXCLUDED.points,
				updated_at = now()
		`,
			int64(snapshot.ChainID),
			snapshot.PoolAddress,
			int64(snapshot.BlockNumber),
			snapshot.ComputedAt,
			snapshot.Status,
			snapshot.ActiveTick,
			points,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_computed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts uint64
	row := s.pool.QueryRow(ctx, `SELECT last_computed_ts FROM depthcurve_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_computed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO depthcurve_state (name, last_computed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_computed_ts = EXCLUDED.last_computed_ts, updated_at = now()
	`, name, ts)
	return err
}
