package pool

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := New(Config{Name: "test"}, nil)
	p.Start()
	defer p.Stop(context.Background())

	var ran atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		if !p.Submit(id, func(context.Context) {
			ran.Add(1)
			wg.Done()
		}) {
			t.Fatalf("submit %q rejected", id)
		}
	}
	wg.Wait()
	if ran.Load() != 3 {
		t.Fatalf("expected 3 runs, got %d", ran.Load())
	}
}

func TestPoolCoalescesSameID(t *testing.T) {
	p := New(Config{Name: "test"}, nil)
	p.Start()
	defer p.Stop(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	if !p.Submit("job", func(context.Context) {
		close(started)
		<-release
	}) {
		t.Fatalf("first submit rejected")
	}
	<-started

	if p.Submit("job", func(context.Context) {}) {
		t.Fatalf("second submit of running id must coalesce")
	}
	close(release)
}

func TestPoolSkipsLateTasks(t *testing.T) {
	p := New(Config{Name: "test", MaxLateness: 10 * time.Millisecond}, nil)
	p.Start()
	defer p.Stop(context.Background())

	// Block the single worker so the next task goes stale in the queue.
	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit("blocker", func(context.Context) {
		close(started)
		<-release
	})
	<-started

	ran := make(chan struct{}, 1)
	p.Submit("late", func(context.Context) { ran <- struct{}{} })
	time.Sleep(30 * time.Millisecond)
	close(release)

	select {
	case <-ran:
		t.Fatalf("late task must be skipped")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPoolSubmitDuringStop(t *testing.T) {
	// Submits racing a concurrent Stop must either enqueue or be rejected,
	// never panic on the closed queue.
	for i := 0; i < 200; i++ {
		p := New(Config{Name: "test", QueueSize: 2}, nil)
		p.Start()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 20; j++ {
				p.Submit(strconv.Itoa(j), func(context.Context) {})
			}
		}()
		p.Stop(context.Background())
		<-done

		if p.Submit("after", func(context.Context) {}) {
			t.Fatalf("submit after stop must be rejected")
		}
	}
}

func TestPoolStopIdempotent(t *testing.T) {
	p := New(Config{Name: "test"}, nil)
	p.Start()
	p.Start() // no-op
	p.Stop(context.Background())
	p.Stop(context.Background()) // no-op
	if p.Submit("x", func(context.Context) {}) {
		t.Fatalf("submit after stop must be rejected")
	}
}
