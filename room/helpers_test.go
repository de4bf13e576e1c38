package room

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/quizroom/content"
	"github.com/wfunc/quizroom/timer"
)

type sentEvent struct {
	kind    string // connection, host, room
	code    string
	to      []string
	msgID   uint16
	payload any
}

// recordingSender captures everything a room sends.
type recordingSender struct {
	mu     sync.Mutex
	events []sentEvent
}

func (s *recordingSender) record(e sentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSender) ToConnection(identity string, msgID uint16, payload any) {
	s.record(sentEvent{kind: "connection", to: []string{identity}, msgID: msgID, payload: payload})
}

func (s *recordingSender) ToHost(code, hostIdentity string, msgID uint16, payload any) {
	s.record(sentEvent{kind: "host", code: code, to: []string{hostIdentity}, msgID: msgID, payload: payload})
}

func (s *recordingSender) ToRoom(code string, identities []string, msgID uint16, payload any) {
	to := make([]string, len(identities))
	copy(to, identities)
	s.record(sentEvent{kind: "room", code: code, to: to, msgID: msgID, payload: payload})
}

func (s *recordingSender) byMsg(msgID uint16) []sentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentEvent
	for _, e := range s.events {
		if e.msgID == msgID {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	reg    *Registry
	clock  *clockwork.FakeClock
	timers *timer.TimerManager
	sender *recordingSender
}

func quizSet(duration int, answers ...float64) *content.Set {
	set := &content.Set{ID: "quiz", Title: "Test quiz", RoundDurationSeconds: duration}
	for i, a := range answers {
		set.Questions = append(set.Questions, content.Question{Prompt: "Q" + string(rune('1'+i)), Answer: a})
	}
	return set
}

func newFixture(t *testing.T, set *content.Set, opts Options) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	timers := timer.NewTimerManager(clock)
	sender := &recordingSender{}

	if set != nil {
		catalog := content.NewCatalog(content.NewFileLoader(t.TempDir()), set.ID)
		catalog.Put(set)
		opts.Content = catalog
	}
	opts.Clock = clock
	opts.Timers = timers
	opts.Sender = sender
	if opts.EmptyRoomGrace == 0 {
		opts.EmptyRoomGrace = 30 * time.Second
	}

	reg := NewRegistry(opts)
	t.Cleanup(reg.Shutdown)
	return &fixture{reg: reg, clock: clock, timers: timers, sender: sender}
}

// newGame creates a room hosted by "host" with the named players joined.
func (f *fixture) newGame(t *testing.T, scoring string, players ...string) *Room {
	t.Helper()
	r, err := f.reg.CreateRoom("host", scoring)
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	for _, p := range players {
		if _, err := r.Join(p, p); err != nil {
			t.Fatalf("Join(%s) error: %v", p, err)
		}
	}
	return r
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func scoreOf(r *Room, name string) int {
	for _, p := range r.Roster() {
		if p.Name == name {
			return p.Score
		}
	}
	return -1
}
