package pool

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	applogger "AssetCast/pkg/logger"
)

// Task is one unit of work bound to a stable job id.
type Task struct {
	ID         string
	EnqueuedAt time.Time
	Run        func(ctx context.Context)
}

// Config tunes a worker pool.
type Config struct {
	Name      string
	Workers   int // default 1
	QueueSize int // default 64
	// MaxLateness is the grace period: a task that waited in the queue
	// longer than this is skipped for that tick instead of running with a
	// stale intent. Zero disables the check.
	MaxLateness time.Duration
}

// Pool is a fixed-size worker pool with per-id coalescing: a task submitted
// while a task with the same id is queued or running is dropped, so ticks of
// the same job never pile up.
type Pool struct {
	cfg Config
	l   *applogger.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	ch      chan Task
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(cfg Config, l *applogger.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Pool{cfg: cfg, l: l, pending: map[string]struct{}{}}
}

// Start launches the workers. Starting a running pool is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.ch = make(chan Task, p.cfg.QueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(p.cfg.Workers)
	for i := 0; i < p.cfg.Workers; i++ {
		go p.worker(ctx, p.ch)
	}
}

// Submit enqueues a task. Returns false when coalesced with an in-flight
// task of the same id, when the queue is full, or when the pool is stopped.
func (p *Pool) Submit(id string, run func(ctx context.Context)) bool {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return false
	}
	if _, busy := p.pending[id]; busy {
		p.mu.Unlock()
		if p.l != nil {
			p.l.Debug("task coalesced with in-flight run",
				applogger.String("pool", p.cfg.Name), applogger.String("job", id))
		}
		return false
	}

	// The send stays under the lock: Stop closes the channel under the same
	// lock, so the started check and the send are atomic against it. The
	// buffered channel keeps the select non-blocking.
	select {
	case p.ch <- Task{ID: id, EnqueuedAt: time.Now(), Run: run}:
		p.pending[id] = struct{}{}
		p.mu.Unlock()
		return true
	default:
		p.mu.Unlock()
		if p.l != nil {
			p.l.Warn("task dropped, queue full",
				applogger.String("pool", p.cfg.Name), applogger.String("job", id))
		}
		return false
	}
}

// Stop cancels workers and waits for in-flight tasks to finish naturally, or
// for ctx to expire.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	cancel := p.cancel
	close(p.ch)
	p.ch = nil
	p.cancel = nil
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		// give up waiting; in-flight work is cancelled, not killed
		cancel()
		return
	}
	cancel()
}

func (p *Pool) worker(ctx context.Context, ch <-chan Task) {
	defer p.wg.Done()
	for task := range ch {
		p.runOne(ctx, task)
	}
}

func (p *Pool) runOne(ctx context.Context, task Task) {
	defer p.clear(task.ID)
	defer func() {
		if r := recover(); r != nil && p.l != nil {
			p.l.Error("panic in pool task",
				applogger.String("pool", p.cfg.Name),
				applogger.String("job", task.ID),
				applogger.Any("panic", r),
				applogger.String("stack", string(debug.Stack())),
			)
		}
	}()

	if p.cfg.MaxLateness > 0 {
		if late := time.Since(task.EnqueuedAt); late > p.cfg.MaxLateness {
			if p.l != nil {
				p.l.Warn("skipping task past grace period",
					applogger.String("pool", p.cfg.Name),
					applogger.String("job", task.ID),
					applogger.Duration("late_ms", late),
				)
			}
			return
		}
	}
	task.Run(ctx)
}

func (p *Pool) clear(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}
