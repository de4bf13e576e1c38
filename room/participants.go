package room

import (
	"sort"
	"strings"
	"time"
)

type ConnectionStatus int

const (
	StatusActive ConnectionStatus = iota
	StatusDisconnected
)

func (s ConnectionStatus) String() string {
	if s == StatusDisconnected {
		return "disconnected"
	}
	return "active"
}

// Player is a non-host participant. Score only ever grows.
type Player struct {
	Identity string
	Name     string
	Score    int
	Status   ConnectionStatus
	JoinedAt time.Time
}

func (p *Player) Connected() bool {
	return p.Status == StatusActive
}

// participantTable keeps players by identity and in join order.
// Callers hold the room lock.
type participantTable struct {
	byID  map[string]*Player
	order []*Player
}

func newParticipantTable() *participantTable {
	return &participantTable{byID: make(map[string]*Player)}
}

func (t *participantTable) get(identity string) (*Player, bool) {
	p, ok := t.byID[identity]
	return p, ok
}

func (t *participantTable) add(identity, name string, now time.Time) *Player {
	p := &Player{
		Identity: identity,
		Name:     name,
		Status:   StatusActive,
		JoinedAt: now,
	}
	t.byID[identity] = p
	t.order = append(t.order, p)
	return p
}

// findDisconnected returns a disconnected player whose name matches, ignoring case.
func (t *participantTable) findDisconnected(name string) (*Player, bool) {
	for _, p := range t.order {
		if p.Status == StatusDisconnected && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// reclaim hands a disconnected player's slot to a new identity.
func (t *participantTable) reclaim(p *Player, identity string) {
	delete(t.byID, p.Identity)
	p.Identity = identity
	p.Status = StatusActive
	t.byID[identity] = p
}

func (t *participantTable) len() int {
	return len(t.order)
}

func (t *participantTable) connected() []*Player {
	var out []*Player
	for _, p := range t.order {
		if p.Connected() {
			out = append(out, p)
		}
	}
	return out
}

func (t *participantTable) roster() []Player {
	out := make([]Player, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, *p)
	}
	return out
}

func (t *participantTable) views() []PlayerView {
	out := make([]PlayerView, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, PlayerView{Name: p.Name, Score: p.Score, Connected: p.Connected()})
	}
	return out
}

// scoreboard orders by score, highest first, then by join order.
func (t *participantTable) scoreboard() []Standing {
	players := make([]*Player, len(t.order))
	copy(players, t.order)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	out := make([]Standing, 0, len(players))
	for _, p := range players {
		out = append(out, Standing{Name: p.Name, Score: p.Score})
	}
	return out
}
