package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PostRunsOnWorker(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	var ranOnWorker atomic.Bool
	done := make(chan struct{})

	err := q.PostFunc(func() {
		ranOnWorker.Store(q.IsCurrent())
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	assert.True(t, ranOnWorker.Load(), "task must run on the worker goroutine")
	assert.False(t, q.IsCurrent(), "caller is not the worker goroutine")
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	const n = 100
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, q.PostFunc(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == n-1 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, i, got[i])
	}
}

func TestQueue_DelayedBeforeImmediate_LowerSequenceWins(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	// Stall the worker so both posts land while it is busy.
	gate := make(chan struct{})
	require.NoError(t, q.PostFunc(func() { <-gate }))

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	// D posted first (lower sequence) with zero delay, then I.
	require.NoError(t, q.PostDelayedFunc(func() {
		mu.Lock()
		order = append(order, "delayed")
		mu.Unlock()
	}, 0))
	require.NoError(t, q.PostFunc(func() {
		mu.Lock()
		order = append(order, "immediate")
		mu.Unlock()
		close(done)
	}))

	close(gate)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"delayed", "immediate"}, order)
}

func TestQueue_ImmediatePostedEarlierBeatsReadyDelayed(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	gate := make(chan struct{})
	require.NoError(t, q.PostFunc(func() { <-gate }))

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	// I posted first, then D with zero delay: I's sequence is lower and
	// must win even though D is ready.
	require.NoError(t, q.PostFunc(func() {
		mu.Lock()
		order = append(order, "immediate")
		mu.Unlock()
	}))
	require.NoError(t, q.PostDelayedFunc(func() {
		mu.Lock()
		order = append(order, "delayed")
		mu.Unlock()
		close(done)
	}, 0))

	close(gate)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"immediate", "delayed"}, order)
}

func TestQueue_DelayedWaitsForFireTime(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	const delay = 50 * time.Millisecond
	start := time.Now()
	done := make(chan struct{})

	require.NoError(t, q.PostDelayedFunc(func() { close(done) }, delay))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delayed task did not run")
	}

	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestQueue_ImmediateRunsWhileDelayedPending(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	require.NoError(t, q.PostDelayedFunc(func() {}, time.Hour))

	done := make(chan struct{})
	require.NoError(t, q.PostFunc(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("immediate task starved by pending delayed task")
	}
}

func TestQueue_PostAfterCloseIsNoOp(t *testing.T) {
	q := New("test")
	require.NoError(t, q.Close(context.Background()))

	err := q.Post(TaskFunc(func() bool {
		t.Error("task must not run after close")
		return true
	}))
	assert.True(t, IsQueueClosedError(err))

	err = q.PostDelayed(TaskFunc(func() bool { return true }), time.Millisecond)
	assert.True(t, IsQueueClosedError(err))

	err = q.PostFunc(func() {})
	assert.True(t, IsQueueClosedError(err))
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := New("test")
	require.NoError(t, q.Close(context.Background()))
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_CloseFromOwnWorkerPanics(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	panicked := make(chan bool, 1)
	require.NoError(t, q.PostFunc(func() {
		defer func() {
			panicked <- recover() != nil
		}()
		_ = q.Close(context.Background())
	}))

	select {
	case got := <-panicked:
		assert.True(t, got, "Close from the worker goroutine must panic")
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestQueue_CloseDropsPendingTasks(t *testing.T) {
	q := New("test")

	gate := make(chan struct{})
	inFlight := make(chan struct{})
	require.NoError(t, q.PostFunc(func() {
		close(inFlight)
		<-gate
	}))
	<-inFlight

	var ran atomic.Bool
	require.NoError(t, q.PostFunc(func() { ran.Store(true) }))

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	require.NoError(t, q.Close(context.Background()))

	assert.False(t, ran.Load(), "pending task must not run after close")
}

func TestQueue_CloseTimeout(t *testing.T) {
	q := New("test")

	gate := make(chan struct{})
	inFlight := make(chan struct{})
	require.NoError(t, q.PostFunc(func() {
		close(inFlight)
		<-gate
	}))
	<-inFlight

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(gate)
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_DoneSignalsWorkerExit(t *testing.T) {
	q := New("test")

	select {
	case <-q.Done():
		t.Fatal("Done must not be closed while the queue is open")
	default:
	}

	require.NoError(t, q.Close(context.Background()))

	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("Done must be closed after Close")
	}
}

func TestQueue_DoneClosesAfterInFlightTask(t *testing.T) {
	q := New("test")

	gate := make(chan struct{})
	inFlight := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, q.PostFunc(func() {
		close(inFlight)
		<-gate
		finished.Store(true)
	}))
	<-inFlight

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	require.NoError(t, q.Close(context.Background()))

	<-q.Done()
	assert.True(t, finished.Load(), "in-flight task completes before Done closes")
}

func TestQueue_NilTask(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	assert.Error(t, q.Post(nil))
	assert.Error(t, q.PostDelayed(nil, time.Millisecond))
	assert.Error(t, q.PostFunc(nil))
	assert.Error(t, q.PostDelayedFunc(nil, time.Millisecond))
}

func TestQueue_Name(t *testing.T) {
	q := New("render")
	defer q.Close(context.Background())
	assert.Equal(t, "render", q.Name())
}

func TestQueue_Len(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	gate := make(chan struct{})
	inFlight := make(chan struct{})
	require.NoError(t, q.PostFunc(func() {
		close(inFlight)
		<-gate
	}))
	<-inFlight

	require.NoError(t, q.PostFunc(func() {}))
	require.NoError(t, q.PostDelayedFunc(func() {}, time.Hour))
	assert.Equal(t, 2, q.Len())

	close(gate)
}

func TestQueue_ExternalTaskNotRecycled(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	done := make(chan struct{})
	var ran atomic.Bool
	task := TaskFunc(func() bool {
		ran.Store(true)
		close(done)
		return false // externally owned
	})

	require.NoError(t, q.Post(task))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	// The poster still owns the task and can inspect it afterwards.
	assert.True(t, ran.Load())
}

func TestQueue_ConcurrentPosters(t *testing.T) {
	q := New("test")
	defer q.Close(context.Background())

	const posters = 10
	const perPoster = 100

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPoster; j++ {
				_ = q.PostFunc(func() { count.Add(1) })
			}
		}()
	}
	wg.Wait()

	deadline := time.After(2 * time.Second)
	for count.Load() < posters*perPoster {
		select {
		case <-deadline:
			t.Fatalf("only %d of %d tasks ran", count.Load(), posters*perPoster)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
