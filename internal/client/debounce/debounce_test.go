package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fire runs the callback unless the timer was stopped, mimicking
// time.AfterFunc delivery.
func (t *fakeTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.f()
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) after(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[len(s.timers)-1]
}

func TestTrigger_OnlyLastRuns(t *testing.T) {
	sched := &fakeScheduler{}
	d := New(300*time.Millisecond, WithAfterFunc(sched.after))

	var got []string
	for _, q := range []string{"p", "pu", "pum", "pump"} {
		q := q
		d.Trigger(func() { got = append(got, q) })
	}

	require.Len(t, sched.timers, 4)
	for _, tm := range sched.timers[:3] {
		require.True(t, tm.stopped)
	}
	for _, dl := range sched.delays {
		require.Equal(t, 300*time.Millisecond, dl)
	}

	sched.last().fire()
	d.Wait()
	require.Equal(t, []string{"pump"}, got)
	require.False(t, d.Pending())
}

func TestTrigger_StaleFireIsSkipped(t *testing.T) {
	sched := &fakeScheduler{}
	d := New(time.Second, WithAfterFunc(sched.after))

	var ran atomic.Int32
	d.Trigger(func() { ran.Add(1) })
	first := sched.last()

	// the first timer fires before Stop wins: mark it fired so Stop fails
	first.mu.Lock()
	first.fired = true
	first.mu.Unlock()

	d.Trigger(func() { ran.Add(10) })

	// the late delivery of the first callback must be discarded
	first.f()
	sched.last().fire()
	d.Wait()

	require.Equal(t, int32(10), ran.Load())
}

func TestCancel(t *testing.T) {
	sched := &fakeScheduler{}
	d := New(time.Second, WithAfterFunc(sched.after))

	require.False(t, d.Cancel())

	d.Trigger(func() { t.Fatal("cancelled call ran") })
	require.True(t, d.Pending())
	require.True(t, d.Cancel())
	require.False(t, d.Pending())

	sched.last().fire()
	d.Wait()
}

func TestRealTimer(t *testing.T) {
	d := New(10 * time.Millisecond)

	done := make(chan string, 4)
	d.Trigger(func() { done <- "a" })
	d.Trigger(func() { done <- "b" })
	d.Wait()

	require.Equal(t, "b", <-done)
	require.Empty(t, done)
	require.Equal(t, 10*time.Millisecond, d.Delay())
}
