package repository

import (
	"context"
	"testing"
	"time"

	"AssetCast/internal/domain/models"
	"AssetCast/pkg/cache"
)

type countingSource struct {
	calls  int
	points []models.Datapoint
}

func (c *countingSource) GetHistorical(context.Context, string, string, int64, int64) ([]models.Datapoint, error) {
	c.calls++
	return c.points, nil
}

func TestCachedSourceServesClosedMonthsFromCache(t *testing.T) {
	now := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	src := &countingSource{points: []models.Datapoint{
		{Timestamp: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Value: models.Float(1)},
	}}
	mem := cache.NewMemoryCache()
	defer mem.Close()

	s := NewCachedHistoricalSource(src, mem, time.Hour, nil)
	s.now = func() time.Time { return now }

	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	to := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	for i := 0; i < 3; i++ {
		points, err := s.GetHistorical(context.Background(), "a", "power", from, to)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(points) != 1 || *points[0].Value != 1 {
			t.Fatalf("round %d returned %+v", i, points)
		}
	}
	if src.calls != 1 {
		t.Fatalf("closed-month range must hit the source once, got %d calls", src.calls)
	}
}

func TestCachedSourceBypassesOpenMonth(t *testing.T) {
	now := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	src := &countingSource{}
	mem := cache.NewMemoryCache()
	defer mem.Close()

	s := NewCachedHistoricalSource(src, mem, time.Hour, nil)
	s.now = func() time.Time { return now }

	// The range ends inside July: still receiving data, never cached.
	from := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	to := now.UnixMilli()
	for i := 0; i < 2; i++ {
		if _, err := s.GetHistorical(context.Background(), "a", "power", from, to); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("open-month range must always hit the source, got %d calls", src.calls)
	}
}
