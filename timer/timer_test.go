package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestTimerManager_FiresOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewTimerManager(clock)

	fired := make(chan struct{}, 4)
	m.AddTimer(5*time.Second, 0, func() { fired <- struct{}{} })

	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}

	clock.Advance(5 * time.Second)
	waitFor(t, fired)

	clock.Advance(10 * time.Second)
	select {
	case <-fired:
		t.Fatal("one-shot timer fired twice")
	case <-time.After(50 * time.Millisecond):
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() after firing = %d, want 0", m.Pending())
	}
}

func TestTimerManager_RemoveBeforeFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewTimerManager(clock)

	fired := make(chan struct{}, 1)
	id := m.AddTimer(time.Second, 0, func() { fired <- struct{}{} })

	if !m.RemoveTimer(id) {
		t.Fatal("RemoveTimer should report a pending task")
	}
	clock.Advance(2 * time.Second)

	select {
	case <-fired:
		t.Fatal("removed timer should not fire")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerManager_RemoveUnknownIsNoop(t *testing.T) {
	m := NewTimerManager(clockwork.NewFakeClock())
	if m.RemoveTimer(42) {
		t.Error("RemoveTimer on unknown id should return false")
	}
}

func TestTimerManager_Interval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewTimerManager(clock)

	fired := make(chan struct{}, 4)
	id := m.AddTimer(time.Second, time.Second, func() { fired <- struct{}{} })

	clock.Advance(time.Second)
	waitFor(t, fired)
	clock.Advance(time.Second)
	waitFor(t, fired)

	if m.Pending() != 1 {
		t.Errorf("interval task should stay pending, got %d", m.Pending())
	}
	m.RemoveTimer(id)
	if m.Pending() != 0 {
		t.Errorf("Pending() after remove = %d, want 0", m.Pending())
	}
}

func TestTimerManager_Stop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewTimerManager(clock)

	fired := make(chan struct{}, 2)
	m.AddTimer(time.Second, 0, func() { fired <- struct{}{} })
	m.AddTimer(2*time.Second, 0, func() { fired <- struct{}{} })

	m.Stop()
	clock.Advance(3 * time.Second)

	select {
	case <-fired:
		t.Fatal("stopped manager should not fire callbacks")
	case <-time.After(50 * time.Millisecond):
	}
}
