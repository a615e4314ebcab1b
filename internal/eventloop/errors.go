package eventloop

import (
	"errors"
	"fmt"
)

// ErrLoopClosed is returned when work is posted after Stop.
var ErrLoopClosed = errors.New("eventloop: closed")

// ErrQueueFull is matched by errors.Is for a *QueueFullError.
var ErrQueueFull = errors.New("eventloop: queue full")

// QueueFullError reports that the queue stayed full for the whole enqueue
// timeout.
type QueueFullError struct {
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("eventloop: queue full (%d/%d)", e.Length, e.Capacity)
}

// Is lets errors.Is(err, ErrQueueFull) match.
func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
