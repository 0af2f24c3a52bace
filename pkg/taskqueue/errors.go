package taskqueue

import (
	"fmt"
)

// QueueClosedError is returned when attempting to post to a closed queue.
type QueueClosedError struct {
	QueueName string
}

func (e *QueueClosedError) Error() string {
	return fmt.Sprintf("queue %s is closed", e.QueueName)
}

// QueueNotFoundError is returned when a queue is not found.
type QueueNotFoundError struct {
	QueueName string
}

func (e *QueueNotFoundError) Error() string {
	return fmt.Sprintf("queue %s not found", e.QueueName)
}

// DuplicateQueueError is returned when attempting to create a queue that
// already exists.
type DuplicateQueueError struct {
	QueueName string
}

func (e *DuplicateQueueError) Error() string {
	return fmt.Sprintf("queue %s already exists", e.QueueName)
}

// IsQueueClosedError returns true if the error is a QueueClosedError.
func IsQueueClosedError(err error) bool {
	_, ok := err.(*QueueClosedError)
	return ok
}

// IsQueueNotFoundError returns true if the error is a QueueNotFoundError.
func IsQueueNotFoundError(err error) bool {
	_, ok := err.(*QueueNotFoundError)
	return ok
}

// IsDuplicateQueueError returns true if the error is a DuplicateQueueError.
func IsDuplicateQueueError(err error) bool {
	_, ok := err.(*DuplicateQueueError)
	return ok
}
