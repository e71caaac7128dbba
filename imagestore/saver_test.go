package imagestore

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/polyevo/genome"
)

type recordingStore struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]error
	gate  chan struct{}
}

func (s *recordingStore) Save(_ image.Image, path string) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[path]; err != nil {
		return err
	}
	s.paths = append(s.paths, path)
	return nil
}

func (s *recordingStore) Load(string) (image.Image, error) { return nil, errors.New("unused") }

func (s *recordingStore) saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func job(path string) Job {
	return Job{Individual: genome.NewRandom(genome.NewRand(1), 3, 8, 8), Path: path}
}

func TestSaver_SavesInOrder(t *testing.T) {
	store := &recordingStore{}
	s := NewSaver(store, nil)

	want := []string{"a.png", "b.png", "c.png", "d.png"}
	for _, p := range want {
		require.NoError(t, s.Enqueue(job(p)))
	}
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, want, store.saved())
	assert.EqualValues(t, 4, s.Saved())
	assert.Zero(t, s.Failures())
	assert.NoError(t, s.Err())
}

func TestSaver_FailureIsReportedNotFatal(t *testing.T) {
	boom := errors.New("disk full")
	store := &recordingStore{fail: map[string]error{"bad.png": boom}}

	var mu sync.Mutex
	var results []error
	s := NewSaver(store, nil, WithResultHook(func(_ Job, err error) {
		mu.Lock()
		results = append(results, err)
		mu.Unlock()
	}))

	require.NoError(t, s.Enqueue(job("ok1.png")))
	require.NoError(t, s.Enqueue(job("bad.png")))
	require.NoError(t, s.Enqueue(job("ok2.png")))
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, []string{"ok1.png", "ok2.png"}, store.saved())
	assert.EqualValues(t, 1, s.Failures())

	var perr *PersistenceError
	require.ErrorAs(t, s.Err(), &perr)
	assert.Equal(t, "bad.png", perr.Path)
	assert.ErrorIs(t, s.Err(), boom)

	require.Len(t, results, 3)
	assert.NoError(t, results[0])
	assert.Error(t, results[1])
	assert.NoError(t, results[2])
}

func TestSaver_RealFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(FileStore{}, nil)
	path := CheckpointName(dir, 1, time.Now())
	require.NoError(t, s.Enqueue(job(path)))
	require.NoError(t, s.Close(context.Background()))

	img, err := FileStore{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	assert.Equal(t, dir, filepath.Dir(path))
}

func TestSaver_EnqueueNeverBlocks(t *testing.T) {
	store := &recordingStore{gate: make(chan struct{})}
	s := NewSaver(store, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = s.Enqueue(job("x.png"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked while the store was busy")
	}

	close(store.gate)
	require.NoError(t, s.Close(context.Background()))
	assert.Len(t, store.saved(), 100)
}

func TestSaver_CloseTimeout(t *testing.T) {
	store := &recordingStore{gate: make(chan struct{})}
	s := NewSaver(store, nil)
	require.NoError(t, s.Enqueue(job("slow.png")))
	require.NoError(t, s.Enqueue(job("dropped.png")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), ErrShutdownTimeout)
	assert.Zero(t, s.Pending())

	close(store.gate)
	assert.ErrorIs(t, s.Enqueue(job("late.png")), ErrSaverClosed)
	require.NoError(t, s.Close(context.Background()))
	assert.NotContains(t, store.saved(), "dropped.png")
}
