package sigslot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingRecorder struct {
	mu          sync.Mutex
	emits       int
	delivered   map[string]int
	skipped     map[string]int
	connects    int
	disconnects int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		delivered: make(map[string]int),
		skipped:   make(map[string]int),
	}
}

func (r *countingRecorder) RecordEmit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emits++
}

func (r *countingRecorder) RecordDelivered(mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered[mode]++
}

func (r *countingRecorder) RecordSkipped(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[reason]++
}

func (r *countingRecorder) RecordConnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++
}

func (r *countingRecorder) RecordDisconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects++
}

func TestSetMetricsRecorder(t *testing.T) {
	rec := newCountingRecorder()
	SetMetricsRecorder(rec)
	defer SetMetricsRecorder(nil)

	var sig Signal[int]
	conn := sig.Connect(func(int) {})
	blocked := sig.Connect(func(int) {})
	blocked.Block()

	sig.Emit(1)
	sig.Emit(2)
	conn.Disconnect()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 2, rec.emits)
	assert.Equal(t, 2, rec.delivered["direct"])
	assert.Equal(t, 2, rec.skipped["blocked"])
	assert.Equal(t, 2, rec.connects)
	assert.Equal(t, 1, rec.disconnects)
}

func TestSetMetricsRecorder_NilRestoresNop(t *testing.T) {
	SetMetricsRecorder(nil)
	assert.NotPanics(t, func() {
		var sig Signal[int]
		sig.Connect(func(int) {})
		sig.Emit(1)
	})
}
