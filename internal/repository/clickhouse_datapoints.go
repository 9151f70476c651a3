package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AssetCast/internal/domain/models"
	pkgch "AssetCast/pkg/clickhouse"
	applogger "AssetCast/pkg/logger"
)

// CHDatapointStore implements DatapointStore backed by ClickHouse. Raw and
// predicted datapoints live in separate tables with the same shape.
type CHDatapointStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

const (
	rawTable       = "assetcast.datapoints_raw"
	predictedTable = "assetcast.datapoints_predicted"
)

var schemaStmts = []string{
	`CREATE DATABASE IF NOT EXISTS assetcast`,
	`CREATE TABLE IF NOT EXISTS ` + rawTable + ` (
        asset_id  String,
        attribute String,
        ts        DateTime64(3),
        value     Nullable(Float64)
    ) ENGINE = MergeTree
    ORDER BY (asset_id, attribute, ts)`,
	// Forecast rows for a timestamp are overwritten by later runs.
	`CREATE TABLE IF NOT EXISTS ` + predictedTable + ` (
        asset_id   String,
        attribute  String,
        ts         DateTime64(3),
        value      Nullable(Float64),
        written_at DateTime64(3) DEFAULT now64(3)
    ) ENGINE = ReplacingMergeTree(written_at)
    ORDER BY (asset_id, attribute, ts)`,
}

func NewCHDatapointStore(ch *pkgch.Client, l *applogger.Logger) *CHDatapointStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHDatapointStore{ch: ch, db: ch.DB(), l: l}
}

func (s *CHDatapointStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStmts)
}

func (s *CHDatapointStore) GetHistorical(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	return s.query(ctx, rawTable, assetID, attribute, fromMs, toMs)
}

func (s *CHDatapointStore) GetPredicted(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	return s.query(ctx, predictedTable, assetID, attribute, fromMs, toMs)
}

func (s *CHDatapointStore) query(ctx context.Context, table, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, value
        FROM %s
        WHERE asset_id = ? AND attribute = ? AND ts >= ? AND ts < ?
        ORDER BY ts ASC
    `, table)
	rows, err := s.db.QueryContext(ctx, q, assetID, attribute,
		time.UnixMilli(fromMs).UTC(), time.UnixMilli(toMs).UTC())
	if err != nil {
		s.l.Error("clickhouse datapoint query error",
			applogger.String("table", table),
			applogger.String("asset", assetID),
			applogger.String("attribute", attribute),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get datapoints: %w", err)
	}
	defer rows.Close()

	out := make([]models.Datapoint, 0, 1024)
	for rows.Next() {
		var ts time.Time
		var value sql.NullFloat64
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("scan datapoint: %w", err)
		}
		dp := models.Datapoint{Timestamp: ts.UnixMilli()}
		if value.Valid {
			dp.Value = models.Float(value.Float64)
		}
		out = append(out, dp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse datapoint query ok",
		applogger.String("table", table),
		applogger.String("asset", assetID),
		applogger.String("attribute", attribute),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHDatapointStore) WritePredicted(ctx context.Context, assetID, attribute string, points []models.Datapoint) error {
	if len(points) == 0 {
		return nil
	}
	// Multi-row VALUES inserts to reduce round-trips, 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, p := range points[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			var v interface{}
			if p.Value != nil {
				v = *p.Value
			}
			args = append(args, assetID, attribute, time.UnixMilli(p.Timestamp).UTC(), v)
		}
		q := fmt.Sprintf("INSERT INTO %s (asset_id, attribute, ts, value) VALUES %s",
			predictedTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("write predicted: %w", err)
		}
	}
	return nil
}

func (s *CHDatapointStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHDatapointStore) Close() error {
	return s.ch.Close()
}
