// timer/timer.go
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type TimerTask struct {
	Id       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	timer    clockwork.Timer
}

// TimerManager schedules cancellable callbacks on a clock. Removing a task that
// already fired or never existed is a no-op.
type TimerManager struct {
	clock  clockwork.Clock
	tasks  map[int64]*TimerTask
	mutex  sync.Mutex
	nextId int64
}

func NewTimerManager(clock clockwork.Clock) *TimerManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TimerManager{
		clock:  clock,
		tasks:  make(map[int64]*TimerTask),
		nextId: 1,
	}
}

// Clock returns the clock timers are scheduled on.
func (m *TimerManager) Clock() clockwork.Clock {
	return m.clock
}

// AddTimer runs callback after delay, then every interval if interval > 0.
func (m *TimerManager) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  m.clock.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextId++

	m.tasks[task.Id] = task
	task.timer = m.clock.AfterFunc(delay, func() { m.fire(task.Id) })
	return task.Id
}

// RemoveTimer cancels a pending task and reports whether it was still pending.
func (m *TimerManager) RemoveTimer(timerId int64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task, ok := m.tasks[timerId]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(m.tasks, timerId)
	return true
}

// Pending reports how many tasks are scheduled.
func (m *TimerManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.tasks)
}

// Stop cancels every pending task.
func (m *TimerManager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, task := range m.tasks {
		task.timer.Stop()
		delete(m.tasks, id)
	}
}

func (m *TimerManager) fire(timerId int64) {
	m.mutex.Lock()
	task, ok := m.tasks[timerId]
	if !ok {
		m.mutex.Unlock()
		return
	}
	if task.Interval > 0 {
		task.Execute = m.clock.Now().Add(task.Interval)
		task.timer = m.clock.AfterFunc(task.Interval, func() { m.fire(timerId) })
	} else {
		delete(m.tasks, timerId)
	}
	m.mutex.Unlock()

	task.Callback()
}
