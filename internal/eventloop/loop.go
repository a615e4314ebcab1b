// Package eventloop provides the single logical UI thread of the client.
//
// Every piece of interaction state (search results, the AI result slot, the
// article draft) is owned by a Loop: it is only read or written from callbacks
// the Loop runs, one at a time, in the order they were posted. Network I/O and
// timers never run on the Loop; they post their outcome back to it.
//
// **Contract**: Do and Flush wait for the Loop, so they must not be called
// from inside a Loop callback.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Loop runs posted callbacks sequentially on one goroutine.
type Loop struct {
	cfg   Config
	queue chan func()

	done chan struct{} // closed in Stop()

	// mu is held shared for the whole of an enqueue and exclusively while
	// Stop marks the loop closed, so every accepted callback is queued
	// before run starts its final drain.
	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

// New constructs a Loop and starts its goroutine.
func New(cfg Config) *Loop {
	// Apply zero‑value defaults.
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.Name == "" {
		cfg.Name = "ui"
	}

	l := &Loop{
		cfg:   cfg,
		queue: make(chan func(), cfg.QueueSize),
		done:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Post enqueues fn to run on the loop and returns without waiting for it.
//
//   - Returns ErrLoopClosed if the loop is stopped.
//   - Returns a *QueueFullError if the queue stays full for EnqueueTimeout.
//   - Returns ctx.Err() if ctx is cancelled first.
//
// A nil error means fn will run, even if Stop is called right after.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrLoopClosed
	}
	if fn == nil {
		return nil
	}

	timer := time.NewTimer(l.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case l.queue <- fn:
		postedTotal.WithLabelValues(l.cfg.Name).Inc()
		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		queueFullTotal.WithLabelValues(l.cfg.Name).Inc()
		return &QueueFullError{Length: len(l.queue), Capacity: cap(l.queue)}
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-finished:
		return nil
	}
}

// Flush waits until every callback posted before the call has run.
func (l *Loop) Flush(ctx context.Context) error {
	return l.Do(ctx, func() {})
}

// Stop runs the callbacks still queued, stops the loop goroutine and waits for
// it to exit. It is idempotent and safe for concurrent use.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()

	l.wg.Wait()
	log.Debug().Str("loop", l.cfg.Name).Msg("event loop stopped")
}

// Close lets Loop satisfy io.Closer.
func (l *Loop) Close() error {
	l.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
			queueDepth.WithLabelValues(l.cfg.Name).Set(float64(len(l.queue)))

		case <-l.done:
			// Drain what was accepted before Stop, preserving order.
			for {
				select {
				case fn := <-l.queue:
					l.invoke(fn)
				default:
					queueDepth.WithLabelValues(l.cfg.Name).Set(0)
					return
				}
			}
		}
	}
}

// invoke runs one callback; a panicking callback must not take the loop down.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			panicsTotal.WithLabelValues(l.cfg.Name).Inc()
			log.Error().Str("loop", l.cfg.Name).Interface("panic", r).Msg("event loop callback panicked")
		}
	}()
	start := time.Now()
	fn()
	runDuration.WithLabelValues(l.cfg.Name).Observe(time.Since(start).Seconds())
}
