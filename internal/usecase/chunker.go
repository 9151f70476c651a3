package usecase

import (
	"context"
	"fmt"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	applogger "AssetCast/pkg/logger"
	"AssetCast/pkg/timeutil"
)

// Chunker presents one logical historical retrieval over a backend that
// degrades on very wide ranges. Ranges wider than one calendar month are
// split into consecutive month-wide sub-ranges and fetched sequentially.
type Chunker struct {
	src domrepo.HistoricalSource
	l   *applogger.Logger
}

func NewChunker(src domrepo.HistoricalSource, l *applogger.Logger) *Chunker {
	if l == nil {
		l = applogger.Nop()
	}
	return &Chunker{src: src, l: l}
}

// GetHistorical fetches [fromMs, toMs) in monthly chunks. The first chunk
// starts exactly at fromMs, the last is clipped to end exactly at toMs, and
// consecutive chunks share a boundary. Any chunk failure aborts immediately;
// partial results are never returned.
func (c *Chunker) GetHistorical(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	if timeutil.MonthsBetween(fromMs, toMs) <= 1 {
		return c.src.GetHistorical(ctx, assetID, attribute, fromMs, toMs)
	}

	var out []models.Datapoint
	chunk := 0
	for start := fromMs; start < toMs; {
		end := timeutil.AddMonths(start, 1)
		if end > toMs {
			end = toMs
		}
		points, err := c.src.GetHistorical(ctx, assetID, attribute, start, end)
		if err != nil {
			if c.l != nil {
				c.l.Warn("historical chunk failed",
					applogger.String("asset", assetID),
					applogger.String("attribute", attribute),
					applogger.Int("chunk", chunk),
					applogger.Int64("from_ms", start),
					applogger.Int64("to_ms", end),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("historical chunk %d [%d,%d): %w", chunk, start, end, err)
		}
		out = append(out, points...)
		start = end
		chunk++
	}
	if c.l != nil {
		c.l.Debug("historical range fetched in chunks",
			applogger.String("asset", assetID),
			applogger.String("attribute", attribute),
			applogger.Int("chunks", chunk),
			applogger.Int("points", len(out)),
		)
	}
	return out, nil
}
