// Package taskqueue provides named single-threaded worker queues.
//
// A Queue owns one worker goroutine that executes tasks strictly one at a
// time. Tasks are accepted on two intake paths — immediate and delayed —
// and are merged under a single posting order: among tasks that are ready
// to run, whichever was posted first executes first.
//
// Basic usage:
//
//	q := taskqueue.New("worker")
//	defer q.Close(context.Background())
//
//	q.PostFunc(func() {
//	    // runs on the worker goroutine
//	})
//	q.PostDelayedFunc(func() {
//	    // runs on the worker goroutine after ~50ms
//	}, 50*time.Millisecond)
package taskqueue

import "sync"

// Task represents a unit of work executed by a Queue's worker goroutine.
type Task interface {
	// Run executes the task once. The return value reports whether the
	// queue owns the task and may recycle it after execution.
	// Externally-owned tasks, such as ones a poster synchronizes on and
	// inspects after completion, must return false.
	Run() bool
}

// TaskFunc adapts a plain function to the Task interface. The function's
// return value is forwarded as the recycle flag.
type TaskFunc func() bool

// Run implements Task.Run.
func (f TaskFunc) Run() bool {
	return f()
}

// closureTask is the queue-owned wrapper used by PostFunc and
// PostDelayedFunc. Instances are pooled and reclaimed by the worker after
// Run returns true.
type closureTask struct {
	fn func()
}

// Run implements Task.Run.
func (t *closureTask) Run() bool {
	t.fn()
	return true
}

var closurePool = sync.Pool{
	New: func() any { return &closureTask{} },
}

// newClosureTask takes a wrapper from the pool.
func newClosureTask(fn func()) *closureTask {
	t := closurePool.Get().(*closureTask)
	t.fn = fn
	return t
}

// recycleTask returns queue-owned wrappers to the pool.
func recycleTask(task Task) {
	if t, ok := task.(*closureTask); ok {
		t.fn = nil
		closurePool.Put(t)
	}
}
