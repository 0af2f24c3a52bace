package taskqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/sigline/sigline/pkg/logger"
)

// Manager is the queue directory: an explicitly-created registry mapping
// names to queues. An application builds one at startup, creates its
// queues, and closes the manager at shutdown.
type Manager struct {
	mu      sync.RWMutex
	queues  map[string]*Queue
	metrics MetricsRecorder
	log     logger.Logger
}

// NewManager creates an empty queue directory.
func NewManager() *Manager {
	return &Manager{
		queues: make(map[string]*Queue),
		log:    logger.Global(),
	}
}

// SetMetrics sets the metrics recorder applied to every queue the manager
// creates from this point on, and to queues already registered.
func (m *Manager) SetMetrics(rec MetricsRecorder) {
	if rec == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = rec
	for _, q := range m.queues {
		q.SetMetrics(rec)
	}
}

// Create creates one queue per name. Names must be unique: an already
// registered name fails the whole call with DuplicateQueueError and no
// partially-created queues are left behind.
func (m *Manager) Create(names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		if name == "" {
			return fmt.Errorf("queue name cannot be empty")
		}
		if _, exists := m.queues[name]; exists {
			return &DuplicateQueueError{QueueName: name}
		}
	}

	created := make([]*Queue, 0, len(names))
	for _, name := range names {
		q := New(name)
		if m.metrics != nil {
			q.SetMetrics(m.metrics)
		}
		m.queues[name] = q
		created = append(created, q)
	}

	for _, q := range created {
		m.log.Debug("task queue created", "queue", q.Name())
	}
	return nil
}

// Get returns a queue by name.
// Returns QueueNotFoundError if the queue doesn't exist.
func (m *Manager) Get(name string) (*Queue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, exists := m.queues[name]
	if !exists {
		return nil, &QueueNotFoundError{QueueName: name}
	}
	return q, nil
}

// Has returns true if a queue with the given name exists.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.queues[name]
	return exists
}

// Names returns a list of all queue names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.queues))
	for name := range m.queues {
		names = append(names, name)
	}
	return names
}

// Close shuts down all queues and empties the directory.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, q := range m.queues {
		if err := q.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close queue %s: %w", name, err))
		} else {
			m.log.Debug("task queue closed", "queue", name)
		}
	}

	m.queues = make(map[string]*Queue)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing queues: %v", errs)
	}
	return nil
}
