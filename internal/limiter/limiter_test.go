package limiter

import (
	"container/heap"
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travel-content-scraper/internal/logging"
	"travel-content-scraper/internal/models"
)

func immediateRetries() RetryPolicy {
	return func(err error, attempt int) (time.Duration, bool) { return 0, true }
}

func TestScheduleNeverExceedsMaxConcurrent(t *testing.T) {
	const maxConcurrent = 3
	const jobs = 12

	l := New(Options{
		MaxConcurrent: maxConcurrent,
		ReservoirSize: jobs,
		MaxRetries:    1,
	}, logging.Nop())
	defer l.Stop()

	var current, peak int64
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Schedule(context.Background(), 0, func(ctx context.Context) error {
				n := atomic.AddInt64(&current, 1)
				for {
					old := atomic.LoadInt64(&peak)
					if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return nil
			})
			if err != nil {
				t.Errorf("schedule: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&peak); got > maxConcurrent {
		t.Fatalf("observed %d concurrent operations, limit is %d", got, maxConcurrent)
	}
	if got := l.Stats().Done; got != jobs {
		t.Fatalf("done = %d, want %d", got, jobs)
	}
}

func TestScheduleRetriesThenSucceeds(t *testing.T) {
	l := New(Options{
		MaxConcurrent: 1,
		ReservoirSize: 10,
		MaxRetries:    3,
		Policy:        immediateRetries(),
	}, logging.Nop())
	defer l.Stop()

	var calls int32
	err := l.Schedule(context.Background(), 0, func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestScheduleSurfacesRetriesExhausted(t *testing.T) {
	l := New(Options{
		MaxConcurrent: 1,
		ReservoirSize: 10,
		MaxRetries:    3,
		Policy:        immediateRetries(),
	}, logging.Nop())
	defer l.Stop()

	sentinel := errors.New("permanently broken")
	err := l.Schedule(context.Background(), 0, func(ctx context.Context) error {
		return sentinel
	})

	var exhausted *models.RetriesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected RetriesExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("final error should wrap the job error, got %v", err)
	}
}

func TestStopCancelsQueuedWork(t *testing.T) {
	l := New(Options{
		MaxConcurrent: 1,
		ReservoirSize: 10,
		MaxRetries:    1,
	}, logging.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	go l.Schedule(context.Background(), 0, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	queuedErr := make(chan error, 1)
	go func() {
		queuedErr <- l.Schedule(context.Background(), 0, func(ctx context.Context) error {
			return nil
		})
	}()

	// Let the second job reach the queue before stopping.
	time.Sleep(50 * time.Millisecond)
	l.Stop()
	close(release)

	if err := <-queuedErr; !errors.Is(err, ErrStopped) {
		t.Fatalf("queued job error = %v, want ErrStopped", err)
	}
	if err := l.Schedule(context.Background(), 0, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("schedule after stop = %v, want ErrStopped", err)
	}
}

func TestDrainRefusesNewWork(t *testing.T) {
	l := New(Options{
		MaxConcurrent: 1,
		ReservoirSize: 10,
		MaxRetries:    1,
	}, logging.Nop())
	defer l.Stop()

	if err := l.Schedule(context.Background(), 0, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	l.Drain()

	if err := l.Schedule(context.Background(), 0, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrDraining) {
		t.Fatalf("schedule after drain = %v, want ErrDraining", err)
	}
}

func TestTaskHeapPriorityOrder(t *testing.T) {
	h := &taskHeap{}
	push := func(priority int, seq uint64) {
		heap.Push(h, &task{priority: priority, seq: seq})
	}
	push(0, 1)
	push(5, 2)
	push(0, 3)
	push(5, 4)

	want := []uint64{2, 4, 1, 3} // high priority first, FIFO within equal
	for i, seq := range want {
		got := heap.Pop(h).(*task)
		if got.seq != seq {
			t.Fatalf("pop %d: seq = %d, want %d", i, got.seq, seq)
		}
	}
}

func TestDefaultRetryPolicyFloors(t *testing.T) {
	policy := DefaultRetryPolicy(time.Second)

	tests := []struct {
		name     string
		err      error
		attempt  int
		minDelay time.Duration
	}{
		{
			name:     "rate limited clamps to five seconds",
			err:      &models.HTTPError{StatusCode: http.StatusTooManyRequests, URL: "http://x"},
			attempt:  0,
			minDelay: 5*time.Second + time.Second,
		},
		{
			name:     "bad gateway clamps to three seconds",
			err:      &models.HTTPError{StatusCode: http.StatusBadGateway, URL: "http://x"},
			attempt:  0,
			minDelay: 3*time.Second + time.Second,
		},
		{
			name:     "plain failure grows exponentially",
			err:      errors.New("boom"),
			attempt:  2,
			minDelay: 4 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := policy(tt.err, tt.attempt)
			if !retry {
				t.Fatalf("expected retry")
			}
			if delay < tt.minDelay {
				t.Fatalf("delay = %v, want >= %v", delay, tt.minDelay)
			}
			if delay > tt.minDelay+time.Second {
				t.Fatalf("delay = %v, jitter should stay under 1s above %v", delay, tt.minDelay)
			}
		})
	}
}

func TestDefaultRetryPolicyStopsOnCancel(t *testing.T) {
	policy := DefaultRetryPolicy(time.Second)
	if _, retry := policy(context.Canceled, 0); retry {
		t.Fatalf("canceled work must not be retried")
	}
}

func TestStatsReportsCapacity(t *testing.T) {
	l := New(Options{MaxConcurrent: 4, ReservoirSize: 7, MaxRetries: 1}, logging.Nop())
	defer l.Stop()

	s := l.Stats()
	if s.Capacity != 4 {
		t.Fatalf("capacity = %d, want 4", s.Capacity)
	}
	if s.ReservoirRemaining <= 0 {
		t.Fatalf("reservoir remaining should start positive, got %f", s.ReservoirRemaining)
	}
}
