package imagestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/gogpu/polyevo/genome"
	"github.com/gogpu/polyevo/internal/logging"
	"github.com/gogpu/polyevo/render"
)

var (
	// ErrSaverClosed is returned by Enqueue after Close.
	ErrSaverClosed = errors.New("imagestore: saver closed")

	// ErrShutdownTimeout is returned by Close when pending saves were
	// abandoned because the grace period expired.
	ErrShutdownTimeout = errors.New("imagestore: shutdown grace period expired")
)

// PersistenceError reports a failed checkpoint save. It is never fatal to a
// run.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("imagestore: save %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Job is one pending snapshot save. Individual must not be modified after
// it is enqueued.
type Job struct {
	Individual *genome.Individual
	Path       string
}

// Saver renders and saves jobs in FIFO order on one background goroutine.
// Enqueue never blocks.
type Saver struct {
	store    Store
	renderer render.Renderer
	onResult func(Job, error)

	mu     sync.Mutex
	queue  []Job
	closed bool
	wake   chan struct{}
	done   chan struct{}
	wg     conc.WaitGroup

	saved    atomic.Int64
	failures atomic.Int64
	lastErr  atomic.Pointer[PersistenceError]
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithResultHook registers fn to be called on the saver goroutine after each
// job, with a nil error on success.
func WithResultHook(fn func(Job, error)) SaverOption {
	return func(s *Saver) {
		s.onResult = fn
	}
}

// NewSaver starts a saver that renders jobs with r and writes them to store.
func NewSaver(store Store, r render.Renderer, opts ...SaverOption) *Saver {
	if store == nil {
		store = FileStore{}
	}
	if r == nil {
		r = render.NewSoftware()
	}
	s := &Saver{
		store:    store,
		renderer: r,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wg.Go(s.run)
	go func() {
		if rec := s.wg.WaitAndRecover(); rec != nil {
			logging.Logger().Error("checkpoint saver panicked", "panic", rec.Value)
		}
		close(s.done)
	}()
	return s
}

// Enqueue schedules job. It returns ErrSaverClosed after Close.
func (s *Saver) Enqueue(job Job) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSaverClosed
	}
	s.queue = append(s.queue, job)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of queued jobs not yet started.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Saved returns the number of successful saves.
func (s *Saver) Saved() int64 { return s.saved.Load() }

// Failures returns the number of failed saves.
func (s *Saver) Failures() int64 { return s.failures.Load() }

// Err returns the most recent save failure, or nil.
func (s *Saver) Err() error {
	if e := s.lastErr.Load(); e != nil {
		return e
	}
	return nil
}

// Close stops accepting jobs and waits for queued jobs to finish. If ctx
// ends first, jobs that have not started are dropped and ErrShutdownTimeout
// is returned; a save already in progress still runs to completion in the
// background. Close is safe to call more than once.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	first := !s.closed
	s.closed = true
	s.mu.Unlock()
	if first {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()
	logging.Logger().Warn("checkpoint saver forced to stop", "dropped", dropped)
	return ErrShutdownTimeout
}

func (s *Saver) run() {
	for {
		job, ok := s.next()
		if !ok {
			return
		}
		s.save(job)
	}
}

// next blocks until a job is available or the saver is closed and drained.
func (s *Saver) next() (Job, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			job := s.queue[0]
			s.queue[0] = Job{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return job, true
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return Job{}, false
		}

		<-s.wake
	}
}

func (s *Saver) save(job Job) {
	err := s.write(job)
	if err != nil {
		perr := &PersistenceError{Path: job.Path, Err: err}
		s.failures.Add(1)
		s.lastErr.Store(perr)
		logging.Logger().Warn("checkpoint save failed", "path", job.Path, "err", err)
		err = perr
	} else {
		s.saved.Add(1)
		logging.Logger().Info("checkpoint saved", "path", job.Path)
	}
	if s.onResult != nil {
		s.onResult(job, err)
	}
}

func (s *Saver) write(job Job) error {
	if job.Individual == nil {
		return errors.New("nil individual")
	}
	w, h := job.Individual.Bounds()
	img, err := s.renderer.Render(job.Individual, w, h)
	if err != nil {
		return err
	}
	return s.store.Save(img, job.Path)
}
