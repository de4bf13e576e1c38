package room

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/wfunc/quizroom/network"
)

var codePattern = regexp.MustCompile(`^[1-9][0-9]{3}$`)

func TestRegistry_CodesAreUniqueFourDigits(t *testing.T) {
	f := newFixture(t, nil, Options{})

	const n = 500
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		r, err := f.reg.CreateRoom("host", "")
		if err != nil {
			t.Fatalf("CreateRoom() error: %v", err)
		}
		if !codePattern.MatchString(r.Code) {
			t.Errorf("code %q is not 4 decimal digits", r.Code)
		}
		seen[r.Code] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d unique codes, got %d", n, len(seen))
	}
	if f.reg.Count() != n {
		t.Errorf("Count() = %d, want %d", f.reg.Count(), n)
	}
}

func TestRegistry_RetriesOnCollision(t *testing.T) {
	draws := []int{1234, 1234, 5678}
	next := 0
	f := newFixture(t, nil, Options{CodeSource: func() int {
		code := draws[next%len(draws)]
		next++
		return code
	}})

	first, _ := f.reg.CreateRoom("a", "")
	second, err := f.reg.CreateRoom("b", "")
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	if first.Code != "1234" || second.Code != "5678" {
		t.Errorf("codes = %s, %s; want 1234, 5678", first.Code, second.Code)
	}
}

func TestRegistry_FallsBackToScan(t *testing.T) {
	f := newFixture(t, nil, Options{CodeAttempts: 3, CodeSource: func() int { return 9999 }})

	first, _ := f.reg.CreateRoom("a", "")
	second, err := f.reg.CreateRoom("b", "")
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	if first.Code != "9999" {
		t.Errorf("first code = %s, want 9999", first.Code)
	}
	// scan wraps from 9999 back to 1000
	if second.Code != "1000" {
		t.Errorf("second code = %s, want 1000", second.Code)
	}
}

func TestRegistry_Full(t *testing.T) {
	next := 0
	f := newFixture(t, nil, Options{CodeAttempts: 1, CodeSource: func() int {
		code := 1000 + next%9000
		next++
		return code
	}})

	for i := 0; i < 9000; i++ {
		if _, err := f.reg.CreateRoom("h", ""); err != nil {
			t.Fatalf("CreateRoom() #%d error: %v", i, err)
		}
	}
	if _, err := f.reg.CreateRoom("h", ""); !errors.Is(err, ErrRegistryFull) {
		t.Errorf("err = %v, want ErrRegistryFull", err)
	}
}

func TestRegistry_CreateRoomScoring(t *testing.T) {
	f := newFixture(t, nil, Options{DefaultScoring: ScoringBuzzer})

	r, err := f.reg.CreateRoom("h", "")
	if err != nil {
		t.Fatal(err)
	}
	if r.Scoring != ScoringBuzzer {
		t.Errorf("default scoring = %s, want buzzer", r.Scoring)
	}

	r, err = f.reg.CreateRoom("h", "Closest")
	if err != nil {
		t.Fatal(err)
	}
	if r.Scoring != ScoringClosest {
		t.Errorf("scoring = %s, want closest", r.Scoring)
	}

	if _, err := f.reg.CreateRoom("h", "loudest"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	f := newFixture(t, nil, Options{})

	if _, err := f.reg.Lookup("0000"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Lookup err = %v, want ErrRoomNotFound", err)
	}
	if _, err := f.reg.Join("0000", "p1", "Ann"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Join err = %v, want ErrRoomNotFound", err)
	}
	if f.reg.Disconnect("0000", "p1") {
		t.Error("Disconnect on unknown room should report false")
	}
}

func TestRegistry_IsHostAndRoster(t *testing.T) {
	f := newFixture(t, quizSet(10, 1), Options{})
	r := f.newGame(t, "", "ann", "bob")

	if !f.reg.IsHost(r.Code, "host") {
		t.Error("host should be recognised")
	}
	if f.reg.IsHost(r.Code, "ann") {
		t.Error("player should not be host")
	}

	roster, err := f.reg.Roster(r.Code)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 || roster[0].Name != "ann" || roster[1].Name != "bob" {
		t.Errorf("roster = %+v, want ann, bob in join order", roster)
	}
}

func TestRegistry_SweepRemovesAbandonedRooms(t *testing.T) {
	closed := make(chan ClosedRoom, 1)
	f := newFixture(t, quizSet(10, 1, 2), Options{
		EmptyRoomGrace: 30 * time.Second,
		Hooks:          Hooks{OnRoomClosed: func(c ClosedRoom) { closed <- c }},
	})
	r := f.newGame(t, "", "ann")
	if err := r.Advance("host"); err != nil {
		t.Fatal(err)
	}

	f.reg.Disconnect(r.Code, "host")
	if got := f.sender.byMsg(network.MsgTypeHostLeft); len(got) != 1 {
		t.Fatalf("expected 1 host-left event, got %d", len(got))
	}

	f.clock.Advance(10 * time.Second)
	f.reg.Sweep()
	if f.reg.Count() != 1 {
		t.Fatal("room should survive inside the grace period")
	}

	f.clock.Advance(25 * time.Second)
	f.reg.Sweep()
	if f.reg.Count() != 0 {
		t.Fatal("room should be removed after the grace period")
	}
	c := <-closed
	if c.Code != r.Code || c.Reason != ReasonHostLeft {
		t.Errorf("closed = %+v, want code %s reason %q", c, r.Code, ReasonHostLeft)
	}
	if len(c.Members) != 2 || c.Members[0] != "host" || c.Members[1] != "ann" {
		t.Errorf("members = %v, want [host ann]", c.Members)
	}

	events := f.sender.byMsg(network.MsgTypeRoomClosed)
	if len(events) != 1 {
		t.Fatalf("expected 1 room-closed event, got %d", len(events))
	}
	if len(events[0].to) != 1 || events[0].to[0] != "ann" {
		t.Errorf("room-closed audience = %v, want [ann]", events[0].to)
	}
	if f.timers.Pending() != 0 {
		t.Errorf("round timer should be cancelled on teardown, %d pending", f.timers.Pending())
	}
	if _, err := r.Join("zed", "zed"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Join on closed room err = %v, want ErrRoomNotFound", err)
	}
}

func TestRegistry_StartRunsSweeper(t *testing.T) {
	f := newFixture(t, nil, Options{EmptyRoomGrace: 5 * time.Second, SweepInterval: 10 * time.Second})
	f.reg.Start()

	r, _ := f.reg.CreateRoom("host", "")
	r.Disconnect("host")

	f.clock.Advance(10 * time.Second)
	eventually(t, "sweeper to remove the room", func() bool { return f.reg.Count() == 0 })
}

func TestRegistry_ShutdownCancelsTimers(t *testing.T) {
	f := newFixture(t, quizSet(10, 1), Options{SweepInterval: time.Second})
	f.reg.Start()
	r := f.newGame(t, "", "ann")
	if err := r.Advance("host"); err != nil {
		t.Fatal(err)
	}
	if f.timers.Pending() != 2 {
		t.Fatalf("expected sweep + round timers, got %d", f.timers.Pending())
	}

	f.reg.Shutdown()
	if f.timers.Pending() != 0 {
		t.Errorf("Pending() after Shutdown = %d, want 0", f.timers.Pending())
	}
	if f.reg.Count() != 0 {
		t.Errorf("Count() after Shutdown = %d, want 0", f.reg.Count())
	}
}

func TestRegistry_Snapshots(t *testing.T) {
	f := newFixture(t, quizSet(10, 1), Options{})
	r := f.newGame(t, "buzzer", "ann", "bob")
	r.Disconnect("bob")

	snaps := f.reg.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Code != r.Code || s.Scoring != "buzzer" || s.Mode != string(ModeIdle) {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Players != 2 || s.ConnectedPlayers != 1 || !s.HostConnected || s.QuestionIndex != -1 {
		t.Errorf("snapshot counts = %+v", s)
	}
}
