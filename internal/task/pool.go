package task

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of background work. Execute runs on a worker
// goroutine and must not touch owner-side state; OnDone runs on the
// owner goroutine after Execute finishes and receives its error.
type Task interface {
	Execute(ctx context.Context) error
	OnDone(err error)
}

// Completion is a finished task waiting for its OnDone phase.
type Completion struct {
	Task Task
	Err  error
}

// Finish runs the completion callback. Call only from the goroutine
// that owns the pool's completion channel.
func (c Completion) Finish() {
	c.Task.OnDone(c.Err)
}

// PanicHandler is called when a task's Execute phase panics.
type PanicHandler func(task Task, recovered any, stack []byte)

func defaultPanicHandler(task Task, recovered any, stack []byte) {
	fmt.Printf("task panic: %v\n%s", recovered, stack)
}

// Pool executes tasks on worker goroutines and delivers completions
// to a channel for the owner to drain.
type Pool struct {
	queueSize   int
	workerCount int
	panicHdl    PanicHandler

	mu          sync.Mutex
	queue       chan Task
	completions chan Completion
	running     atomic.Bool
	wg          sync.WaitGroup
	baseCtx     context.Context
	cancel      context.CancelFunc

	// inFlight counts tasks submitted but not yet completed, used to
	// drain on Stop.
	inFlight sync.WaitGroup

	submitted   atomic.Uint64
	executed    atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithQueueSize sets the submission queue capacity.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithPanicHandler sets the handler invoked when Execute panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) {
		if h != nil {
			p.panicHdl = h
		}
	}
}

// NewPool creates a pool. The default worker count matches the CPU
// count, mirroring one worker per core.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		queueSize:   256,
		workerCount: runtime.NumCPU(),
		panicHdl:    defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = make(chan Task, p.queueSize)
	// Completions buffer one slot per queued task plus one per worker
	// so a worker never blocks publishing while the owner is busy.
	p.completions = make(chan Completion, p.queueSize+p.workerCount)
	p.baseCtx, p.cancel = context.WithCancel(context.Background())
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return nil
}

// Submit queues a task for execution. Returns ErrQueueFull when the
// queue is at capacity and ErrNotRunning after Stop.
func (p *Pool) Submit(t Task) error {
	if !p.running.Load() {
		return ErrNotRunning
	}

	p.inFlight.Add(1)
	select {
	case p.queue <- t:
		p.submitted.Add(1)
		return nil
	default:
		p.inFlight.Done()
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Completions returns the channel finished tasks arrive on. The owner
// loop receives from it and calls Finish on each completion.
func (p *Pool) Completions() <-chan Completion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completions
}

// Stop stops accepting tasks, waits for in-flight work to finish and
// closes the completion channel. The context bounds the wait; on
// cancellation workers are abandoned mid-task.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		close(p.completions)
		return nil
	case <-ctx.Done():
		// Signal running tasks to give up, then abandon the wait.
		p.cancel()
		return ctx.Err()
	}
}

// IsRunning reports whether the pool accepts tasks.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// QueueDepth returns the number of tasks waiting for a worker.
func (p *Pool) QueueDepth() int {
	if !p.running.Load() {
		return 0
	}
	return len(p.queue)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for t := range p.queue {
		p.execute(t)
	}
}

// execute runs one task and publishes its completion. A panic in
// Execute is converted to an error completion so OnDone still runs.
func (p *Pool) execute(t Task) {
	defer p.inFlight.Done()

	start := time.Now()
	err := p.runGuarded(t)
	p.totalTimeNs.Add(time.Since(start).Nanoseconds())

	p.executed.Add(1)
	if err != nil {
		p.failed.Add(1)
	} else {
		p.succeeded.Add(1)
	}

	p.completions <- Completion{Task: t, Err: err}
}

func (p *Pool) runGuarded(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			stack := debug.Stack()
			func() {
				defer func() { _ = recover() }()
				p.panicHdl(t, r, stack)
			}()
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.Execute(p.baseCtx)
}

// Stats describes pool activity.
type Stats struct {
	Submitted     uint64
	Executed      uint64
	Succeeded     uint64
	Failed        uint64
	Panicked      uint64
	Dropped       uint64
	QueueDepth    int
	TotalDuration time.Duration
	AvgDuration   time.Duration
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	executed := p.executed.Load()
	totalNs := p.totalTimeNs.Load()

	var avgNs int64
	if executed > 0 {
		avgNs = totalNs / int64(executed)
	}

	return Stats{
		Submitted:     p.submitted.Load(),
		Executed:      executed,
		Succeeded:     p.succeeded.Load(),
		Failed:        p.failed.Load(),
		Panicked:      p.panicked.Load(),
		Dropped:       p.dropped.Load(),
		QueueDepth:    p.QueueDepth(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}
