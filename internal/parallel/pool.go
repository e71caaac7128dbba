// Package parallel provides the fixed-size worker pool used for fitness
// evaluation fan-out.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned when work is submitted to a closed pool.
	ErrClosed = errors.New("parallel: pool closed")

	// ErrForcedShutdown is returned by Shutdown when the grace period
	// expired and the pool context was cancelled under running tasks.
	ErrForcedShutdown = errors.New("parallel: forced shutdown")
)

// Task is one unit of work. ctx is the pool context, cancelled only by a
// forced shutdown; long tasks should check it.
type Task func(ctx context.Context) error

// WorkerPool is a fixed set of goroutines executing tasks.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, which keeps workers busy when task costs vary (polygon counts and
// sizes differ between genomes).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()

	ctx    context.Context
	cancel context.CancelFunc

	// done signals workers to drain and exit.
	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return
		case work := <-myQueue:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				work()
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task and blocks until all of them have returned.
// This is the barrier between generations. Errors from tasks are joined;
// a panicking task is reported as an error instead of killing the worker.
func (p *WorkerPool) ExecuteAll(tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if !p.running.Load() {
		return ErrClosed
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	wg.Add(len(tasks))
	for i, task := range tasks {
		work := func() {
			defer wg.Done()
			if err := p.run(task); err != nil {
				record(err)
			}
		}
		select {
		case p.workQueues[i%p.workers] <- work:
		case <-p.done:
			wg.Done()
			record(ErrClosed)
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Submit queues a single task on the shortest queue without waiting.
// Its error, if any, is discarded.
func (p *WorkerPool) Submit(task Task) error {
	if task == nil {
		return nil
	}
	if !p.running.Load() {
		return ErrClosed
	}

	minIdx, minLen := 0, len(p.workQueues[0])
	for i := 1; i < p.workers; i++ {
		if l := len(p.workQueues[i]); l < minLen {
			minIdx, minLen = i, l
		}
	}
	select {
	case p.workQueues[minIdx] <- func() { _ = p.run(task) }:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *WorkerPool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parallel: task panicked: %v", r)
		}
	}()
	return task(p.ctx)
}

// Shutdown stops accepting work and waits for queued tasks to finish. If ctx
// ends first, the pool context is cancelled so cooperative tasks can bail
// out, and ErrForcedShutdown is returned. Shutdown is safe to call more than
// once; later calls only wait.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	if p.running.CompareAndSwap(true, false) {
		close(p.done)
	}

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ErrForcedShutdown
	}
}

// Close shuts the pool down and waits without a deadline.
func (p *WorkerPool) Close() {
	_ = p.Shutdown(context.Background())
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork approximates the number of queued, not yet started items.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}
