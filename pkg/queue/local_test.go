package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

func runLocal(t *testing.T, workers int, handler Handler) *Local {
	l := NewLocalQueue(&Options{Workers: workers})
	require.Nil(t, l.Register(TaskBuild, handler))

	ran := make(chan error, 1)
	go func() { ran <- l.Run() }()
	t.Cleanup(func() {
		l.Close()
		assert.Nil(t, <-ran)
	})
	return l
}

func TestLocalProcessesEverything(t *testing.T) {
	var lock sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup

	l := runLocal(t, 3, func(ctx context.Context, jobID string) error {
		defer wg.Done()
		lock.Lock()
		defer lock.Unlock()
		seen[jobID]++
		return nil
	})

	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	wg.Add(len(ids))
	for _, id := range ids {
		qid, err := l.Enqueue(context.TODO(), TaskBuild, id)
		assert.Nil(t, err)
		assert.NotEmpty(t, qid)
	}
	wg.Wait()

	lock.Lock()
	defer lock.Unlock()
	assert.Len(t, seen, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, seen[id], id)
	}
}

func TestLocalEnqueueDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	var done sync.WaitGroup

	l := runLocal(t, 1, func(ctx context.Context, jobID string) error {
		defer done.Done()
		<-release
		return nil
	})

	done.Add(50)
	start := time.Now()
	for i := 0; i < 50; i++ {
		_, err := l.Enqueue(context.TODO(), TaskBuild, "job")
		assert.Nil(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	done.Wait()
}

func TestLocalConcurrencyBound(t *testing.T) {
	var current, peak int64
	var wg sync.WaitGroup

	l := runLocal(t, 2, func(ctx context.Context, jobID string) error {
		defer wg.Done()
		now := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if now <= old || atomic.CompareAndSwapInt64(&peak, old, now) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return nil
	})

	wg.Add(10)
	for i := 0; i < 10; i++ {
		_, err := l.Enqueue(context.TODO(), TaskBuild, "job")
		assert.Nil(t, err)
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestLocalHandlerErrorKeepsWorking(t *testing.T) {
	var wg sync.WaitGroup
	var count int64

	l := runLocal(t, 1, func(ctx context.Context, jobID string) error {
		defer wg.Done()
		atomic.AddInt64(&count, 1)
		return errors.ErrInvalidState
	})

	wg.Add(3)
	for i := 0; i < 3; i++ {
		_, err := l.Enqueue(context.TODO(), TaskBuild, "job")
		assert.Nil(t, err)
	}
	wg.Wait()

	assert.Equal(t, int64(3), atomic.LoadInt64(&count))
}

func TestLocalClose(t *testing.T) {
	l := NewLocalQueue(&Options{})
	require.Nil(t, l.Register(TaskBuild, func(ctx context.Context, jobID string) error { return nil }))

	assert.Nil(t, l.Close())
	assert.Nil(t, l.Close())

	_, err := l.Enqueue(context.TODO(), TaskBuild, "job")
	assert.ErrorIs(t, err, errors.ErrQueueClosed)
	assert.ErrorIs(t, l.Run(), errors.ErrQueueClosed)
}

func TestLocalRegisterAfterRun(t *testing.T) {
	l := runLocal(t, 1, func(ctx context.Context, jobID string) error { return nil })

	assert.Eventually(t, func() bool {
		return l.Register("other", func(ctx context.Context, jobID string) error { return nil }) != nil
	}, time.Second, 10*time.Millisecond)
}

func TestLocalShared(t *testing.T) {
	assert.False(t, NewLocalQueue(&Options{}).Shared())
}

func TestNew(t *testing.T) {
	cases := []struct {
		Name       string
		Given      string
		ExpectType Queue
		ExpectErr  error
	}{
		{"Empty", "", &Local{}, nil},
		{"Memory", "memory://", &Local{}, nil},
		{"Redis", "redis://localhost:6379/0", &Asynq{}, nil},
		{"Unsupported", "amqp://localhost", nil, errors.ErrNotSupported},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qu, err := New(&Options{URL: c.Given})

			assert.ErrorIs(t, err, c.ExpectErr)
			if c.ExpectType != nil {
				assert.IsType(t, c.ExpectType, qu)
				qu.Close()
			}
		})
	}
}

func TestIsShared(t *testing.T) {
	assert.False(t, IsShared(""))
	assert.False(t, IsShared("memory://"))
	assert.True(t, IsShared("redis://localhost:6379/0"))
	assert.True(t, IsShared("rediss://localhost:6379/0"))
}

func TestLocalTimeout(t *testing.T) {
	l := NewLocalQueue(&Options{Workers: 1, Timeout: 10 * time.Millisecond})
	deadlines := make(chan bool, 1)
	require.Nil(t, l.Register(TaskBuild, func(ctx context.Context, jobID string) error {
		_, ok := ctx.Deadline()
		<-ctx.Done()
		deadlines <- ok
		return ctx.Err()
	}))
	go l.Run()
	defer l.Close()

	_, err := l.Enqueue(context.TODO(), TaskBuild, "a")
	require.Nil(t, err)

	select {
	case ok := <-deadlines:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("handler context was never cancelled")
	}
}
