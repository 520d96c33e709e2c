// Package aid runs the hold-and-snap workflow that upgrades freehand ink
// into geometric primitives.
package aid

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a scheduled callback. Stop is idempotent; after it returns the
// callback will not start again.
type Task interface {
	Stop()
}

// Scheduler provides deferred and periodic callbacks plus the monotonic
// clock (milliseconds) that pointer samples are stamped with.
type Scheduler interface {
	Now() float64
	AfterFunc(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// ClockScheduler is backed by the runtime timers. Callbacks are handed to
// dispatch, which must run them on the goroutine that owns the board state.
type ClockScheduler struct {
	epoch    time.Time
	dispatch func(func())
}

// NewClockScheduler returns a scheduler whose callbacks run through
// dispatch. A nil dispatch runs callbacks on the timer goroutine.
func NewClockScheduler(dispatch func(func())) *ClockScheduler {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &ClockScheduler{epoch: time.Now(), dispatch: dispatch}
}

func (s *ClockScheduler) Now() float64 {
	return millis(time.Since(s.epoch))
}

type clockTask struct {
	stopped atomic.Bool
	once    sync.Once
	stop    func()
}

func (t *clockTask) Stop() {
	t.stopped.Store(true)
	t.once.Do(t.stop)
}

func (s *ClockScheduler) guarded(t *clockTask, f func()) func() {
	return func() {
		s.dispatch(func() {
			if !t.stopped.Load() {
				f()
			}
		})
	}
}

func (s *ClockScheduler) AfterFunc(d time.Duration, f func()) Task {
	t := &clockTask{}
	timer := time.AfterFunc(d, s.guarded(t, f))
	t.stop = func() { timer.Stop() }
	return t
}

func (s *ClockScheduler) Every(d time.Duration, f func()) Task {
	t := &clockTask{}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	fire := s.guarded(t, f)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fire()
			case <-done:
				return
			}
		}
	}()
	t.stop = func() { close(done) }
	return t
}

// ManualScheduler only moves when told to. It runs callbacks synchronously
// inside Advance, in due-time order, which makes timer-driven behavior
// reproducible in tests and recorded-input replays.
type ManualScheduler struct {
	now   float64
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at      float64
	every   float64
	seq     int
	f       func()
	stopped bool
}

func (t *manualTask) Stop() { t.stopped = true }

// NewManualScheduler starts the clock at start milliseconds.
func NewManualScheduler(start float64) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (m *ManualScheduler) Now() float64 { return m.now }

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Task {
	return m.add(millis(d), 0, f)
}

func (m *ManualScheduler) Every(d time.Duration, f func()) Task {
	ms := millis(d)
	if ms <= 0 {
		ms = 1
	}
	return m.add(ms, ms, f)
}

func (m *ManualScheduler) add(delay, every float64, f func()) *manualTask {
	m.seq++
	t := &manualTask{at: m.now + delay, every: every, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d, firing every task that falls due.
func (m *ManualScheduler) Advance(d time.Duration) {
	target := m.now + millis(d)
	for {
		m.prune()
		sort.Slice(m.tasks, func(i, j int) bool {
			if m.tasks[i].at != m.tasks[j].at {
				return m.tasks[i].at < m.tasks[j].at
			}
			return m.tasks[i].seq < m.tasks[j].seq
		})
		if len(m.tasks) == 0 || m.tasks[0].at > target {
			break
		}
		t := m.tasks[0]
		m.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			t.stopped = true
		}
		t.f()
	}
	m.now = target
}

// Pending counts live tasks.
func (m *ManualScheduler) Pending() int {
	m.prune()
	return len(m.tasks)
}

func (m *ManualScheduler) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
}
