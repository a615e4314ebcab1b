// Package scheduler provides cancellable delayed tasks. Production code runs on
// the wall clock; tests drive a Virtual scheduler and advance time explicitly.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending delayed task.
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or was
	// already stopped.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

// Real returns a Scheduler backed by time.AfterFunc. Callbacks run on their own
// goroutine.
func Real() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Virtual is a manually advanced Scheduler. Due callbacks run synchronously
// inside Advance, ordered by due time and then by registration order.
type Virtual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*virtualTimer
}

type virtualTimer struct {
	v       *Virtual
	at      time.Duration
	seq     uint64
	fn      func()
	settled bool // fired or stopped
}

// NewVirtual returns a Virtual scheduler positioned at time zero.
func NewVirtual() *Virtual { return &Virtual{} }

// AfterFunc registers fn to run once virtual time has advanced by d.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{v: v, at: v.now + d, seq: v.seq, fn: fn}
	v.tasks = append(v.tasks, t)
	return t
}

// Now returns the virtual time elapsed since construction.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Pending returns the number of registered tasks that have neither run nor
// been stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.tasks)
}

// Advance moves virtual time forward by d, running every task that falls due.
// Tasks registered by a running callback are eligible in the same call.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now + d
	v.mu.Unlock()

	for {
		v.mu.Lock()
		next := v.popDue(target)
		if next == nil {
			v.now = target
			v.mu.Unlock()
			return
		}
		v.now = next.at
		v.mu.Unlock()
		next.fn()
	}
}

// popDue removes and returns the earliest task due at or before target.
// Caller holds v.mu.
func (v *Virtual) popDue(target time.Duration) *virtualTimer {
	if len(v.tasks) == 0 {
		return nil
	}
	sort.SliceStable(v.tasks, func(i, j int) bool {
		if v.tasks[i].at != v.tasks[j].at {
			return v.tasks[i].at < v.tasks[j].at
		}
		return v.tasks[i].seq < v.tasks[j].seq
	})
	t := v.tasks[0]
	if t.at > target {
		return nil
	}
	v.tasks = v.tasks[1:]
	t.settled = true
	return t
}

func (t *virtualTimer) Stop() bool {
	v := t.v
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.settled {
		return false
	}
	t.settled = true
	for i, other := range v.tasks {
		if other == t {
			v.tasks = append(v.tasks[:i], v.tasks[i+1:]...)
			break
		}
	}
	return true
}
