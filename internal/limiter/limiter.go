// Package limiter implements the admission controller that gates every
// navigation: a concurrency gate, minimum spacing between operation starts,
// a refillable reservoir of permitted operations per time window, and retry
// with exponential backoff.
package limiter

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"travel-content-scraper/internal/models"
)

var (
	// ErrStopped is returned for work that was queued but not started when
	// Stop was called, and for work submitted afterwards.
	ErrStopped = errors.New("limiter stopped")
	// ErrDraining is returned for work submitted after Drain began.
	ErrDraining = errors.New("limiter draining")
)

// Job is one unit of gated work. The context is the scheduling caller's.
type Job func(ctx context.Context) error

// Options configures a Limiter.
type Options struct {
	MaxConcurrent  int           // concurrency gate width
	RequestDelay   time.Duration // minimum spacing between starts
	MaxRetries     int           // total attempts per job
	RetryDelay     time.Duration // backoff base
	ReservoirSize  int           // operations permitted per refill window
	RefillInterval time.Duration // reservoir refill window
	StatusInterval time.Duration // periodic status log; zero disables
	Policy         RetryPolicy   // nil selects DefaultRetryPolicy(RetryDelay)
}

// Stats is a point-in-time snapshot of controller state for diagnostics.
type Stats struct {
	Running            int64
	Queued             int64
	Done               int64
	ReservoirRemaining float64
	Capacity           int
}

type task struct {
	job      Job
	ctx      context.Context
	priority int
	seq      uint64
	canceled atomic.Bool
	done     chan error
}

// taskHeap orders by priority (higher first), FIFO within equal priority.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)        { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Limiter serializes admission of scraping operations. All cross-call
// mutable state lives here; callers never touch the counters directly.
type Limiter struct {
	opts      Options
	sem       *semaphore.Weighted
	spacing   *rate.Limiter
	reservoir *rate.Limiter
	policy    RetryPolicy
	log       zerolog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    taskHeap
	seq      uint64
	stopped  bool
	draining bool

	running atomic.Int64
	queued  atomic.Int64
	done    atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	wake    chan struct{}
}

// New builds and starts a Limiter. Callers must eventually Stop or Drain it.
func New(opts Options, log zerolog.Logger) *Limiter {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.ReservoirSize <= 0 {
		opts.ReservoirSize = 1
	}
	if opts.RefillInterval <= 0 {
		opts.RefillInterval = time.Minute
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	policy := opts.Policy
	if policy == nil {
		policy = DefaultRetryPolicy(opts.RetryDelay)
	}

	spacing := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestDelay > 0 {
		spacing = rate.NewLimiter(rate.Every(opts.RequestDelay), 1)
	}
	refillPerSecond := float64(opts.ReservoirSize) / opts.RefillInterval.Seconds()

	ctx, cancel := context.WithCancel(context.Background())
	l := &Limiter{
		opts:      opts,
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		spacing:   spacing,
		reservoir: rate.NewLimiter(rate.Limit(refillPerSecond), opts.ReservoirSize),
		policy:    policy,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		wake:      make(chan struct{}, 1),
	}
	l.cond = sync.NewCond(&l.mu)

	go l.dispatch()
	if opts.StatusInterval > 0 {
		go l.reportStatus()
	}
	return l
}

// Schedule submits a job and blocks until it finishes, returning its result
// or its final error after retries are exhausted. Higher priority runs
// first; equal priorities run in submission order.
func (l *Limiter) Schedule(ctx context.Context, priority int, job Job) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	if l.draining {
		l.mu.Unlock()
		return ErrDraining
	}
	l.seq++
	t := &task{job: job, ctx: ctx, priority: priority, seq: l.seq, done: make(chan error, 1)}
	heap.Push(&l.queue, t)
	l.queued.Add(1)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		t.canceled.Store(true)
		return ctx.Err()
	}
}

// Stats reports current counters and reservoir remaining.
func (l *Limiter) Stats() Stats {
	return Stats{
		Running:            l.running.Load(),
		Queued:             l.queued.Load(),
		Done:               l.done.Load(),
		ReservoirRemaining: l.reservoir.Tokens(),
		Capacity:           l.opts.MaxConcurrent,
	}
}

// Stop cancels all queued-but-not-started work immediately. In-flight jobs
// are not interrupted; each queued job's caller receives ErrStopped.
func (l *Limiter) Stop() {
	l.cancel()
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	dropped := len(l.queue)
	for _, t := range l.queue {
		t.done <- ErrStopped
		l.queued.Add(-1)
	}
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()

	if dropped > 0 {
		l.log.Warn().Int("dropped", dropped).Msg("limiter stopped with queued work")
	}
}

// Drain refuses new work, lets queued and in-flight work finish, then
// returns.
func (l *Limiter) Drain() {
	l.mu.Lock()
	l.draining = true
	for l.queued.Load() > 0 && !l.stopped {
		l.cond.Wait()
	}
	l.mu.Unlock()
	l.workers.Wait()
}

func (l *Limiter) dispatch() {
	for {
		t := l.next()
		if t == nil {
			return
		}
		if t.canceled.Load() {
			l.queued.Add(-1)
			l.signalEmpty()
			continue
		}
		if err := l.spacing.Wait(l.ctx); err != nil {
			l.finish(t, ErrStopped)
			continue
		}
		if err := l.reservoir.Wait(l.ctx); err != nil {
			l.finish(t, ErrStopped)
			continue
		}
		if err := l.sem.Acquire(l.ctx, 1); err != nil {
			l.finish(t, ErrStopped)
			continue
		}
		l.workers.Add(1)
		l.running.Add(1)
		l.queued.Add(-1)
		l.signalEmpty()
		go l.run(t)
	}
}

func (l *Limiter) next() *task {
	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return nil
		}
		if len(l.queue) > 0 {
			t := heap.Pop(&l.queue).(*task)
			l.mu.Unlock()
			return t
		}
		l.mu.Unlock()

		select {
		case <-l.wake:
		case <-l.ctx.Done():
			return nil
		}
	}
}

func (l *Limiter) run(t *task) {
	defer func() {
		l.sem.Release(1)
		l.running.Add(-1)
		l.done.Add(1)
		l.workers.Done()
	}()

	var err error
	attempts := 0
	for attempt := 0; attempt < l.opts.MaxRetries; attempt++ {
		attempts++
		err = t.job(t.ctx)
		if err == nil {
			t.done <- nil
			return
		}
		if attempt+1 >= l.opts.MaxRetries {
			break
		}
		delay, retry := l.policy(err, attempt)
		if !retry {
			break
		}
		l.log.Debug().
			Int("attempt", attempts).
			Dur("delay", delay).
			Str("error_type", models.ErrorTypeLabel(err)).
			Msg("retrying operation")
		select {
		case <-time.After(delay):
		case <-t.ctx.Done():
			t.done <- t.ctx.Err()
			return
		}
	}
	t.done <- &models.RetriesExhaustedError{Attempts: attempts, Err: err}
}

func (l *Limiter) finish(t *task, err error) {
	l.queued.Add(-1)
	l.signalEmpty()
	t.done <- err
}

func (l *Limiter) signalEmpty() {
	l.mu.Lock()
	if l.queued.Load() == 0 {
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}

func (l *Limiter) reportStatus() {
	ticker := time.NewTicker(l.opts.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			s := l.Stats()
			l.log.Debug().
				Int64("running", s.Running).
				Int64("queued", s.Queued).
				Int64("done", s.Done).
				Float64("reservoir", s.ReservoirRemaining).
				Msg("limiter status")
		}
	}
}
