package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"AssetCast/internal/domain/models"
)

type recordedCall struct {
	from, to int64
}

type fakeHistorical struct {
	calls   []recordedCall
	failAt  int // 1-based call index to fail on; 0 = never
	perCall int // datapoints returned per call
}

func (f *fakeHistorical) GetHistorical(_ context.Context, _, _ string, fromMs, toMs int64) ([]models.Datapoint, error) {
	f.calls = append(f.calls, recordedCall{fromMs, toMs})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("upstream degraded")
	}
	out := make([]models.Datapoint, 0, f.perCall)
	for i := 0; i < f.perCall; i++ {
		out = append(out, models.Datapoint{Timestamp: fromMs + int64(i), Value: models.Float(1)})
	}
	return out, nil
}

func msAt(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func TestChunkerSingleCallPath(t *testing.T) {
	src := &fakeHistorical{perCall: 2}
	c := NewChunker(src, nil)

	from, to := msAt(2024, time.March, 3), msAt(2024, time.April, 1)
	if _, err := c.GetHistorical(context.Background(), "a", "temp", from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(src.calls))
	}
	if src.calls[0].from != from || src.calls[0].to != to {
		t.Fatalf("call bounds %+v, want [%d,%d)", src.calls[0], from, to)
	}

	// Degenerate from == to also takes the single-call path.
	src.calls = nil
	if _, err := c.GetHistorical(context.Background(), "a", "temp", from, from); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected 1 call for from == to, got %d", len(src.calls))
	}
}

func TestChunkerBoundaryExactness(t *testing.T) {
	src := &fakeHistorical{perCall: 1}
	c := NewChunker(src, nil)

	from, to := msAt(2024, time.January, 15), msAt(2024, time.April, 15)
	points, err := c.GetHistorical(context.Background(), "a", "temp", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 3 {
		t.Fatalf("expected 3 monthly calls, got %d: %+v", len(src.calls), src.calls)
	}
	if src.calls[0].from != from {
		t.Fatalf("first chunk starts at %d, want %d", src.calls[0].from, from)
	}
	if src.calls[len(src.calls)-1].to != to {
		t.Fatalf("last chunk ends at %d, want %d", src.calls[len(src.calls)-1].to, to)
	}
	for i := 1; i < len(src.calls); i++ {
		if src.calls[i].from != src.calls[i-1].to {
			t.Fatalf("gap/overlap between chunk %d and %d: %+v", i-1, i, src.calls)
		}
	}
	if len(points) != 3 {
		t.Fatalf("expected concatenated results from 3 chunks, got %d points", len(points))
	}
}

func TestChunkerClipsFinalChunk(t *testing.T) {
	src := &fakeHistorical{perCall: 1}
	c := NewChunker(src, nil)

	// Jan 15 -> Apr 20: three full months plus a partial tail.
	from, to := msAt(2024, time.January, 15), msAt(2024, time.April, 20)
	if _, err := c.GetHistorical(context.Background(), "a", "temp", from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(src.calls))
	}
	last := src.calls[len(src.calls)-1]
	if last.to != to {
		t.Fatalf("final chunk must clip to %d, got %d", to, last.to)
	}
	if last.to > to {
		t.Fatalf("final chunk extends past requested range")
	}
}

func TestChunkerFailFast(t *testing.T) {
	src := &fakeHistorical{perCall: 5, failAt: 2}
	c := NewChunker(src, nil)

	from, to := msAt(2024, time.January, 1), msAt(2024, time.June, 1)
	points, err := c.GetHistorical(context.Background(), "a", "temp", from, to)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if points != nil {
		t.Fatalf("partial results must be discarded, got %d points", len(points))
	}
	if len(src.calls) != 2 {
		t.Fatalf("must abort after failing call, made %d calls", len(src.calls))
	}
}
