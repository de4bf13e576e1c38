package room

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/timer"
)

const (
	minCode   = 1000
	codeSpace = 9000
)

// Close reasons.
const (
	ReasonHostLeft = "host_left"
	ReasonShutdown = "shutdown"
)

type Options struct {
	Clock          clockwork.Clock
	Timers         *timer.TimerManager
	Content        ContentSource
	Sender         Sender
	Hooks          Hooks
	DefaultScoring Scoring
	Limits         Limits
	CodeAttempts   int
	EmptyRoomGrace time.Duration
	SweepInterval  time.Duration
	// CodeSource draws a candidate code in [1000, 9999]. Defaults to a uniform draw.
	CodeSource func() int
}

// Registry owns every live room, keyed by its 4-digit code.
type Registry struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	clock          clockwork.Clock
	timers         *timer.TimerManager
	content        ContentSource
	sender         Sender
	hooks          Hooks
	defaultScoring Scoring
	limits         Limits
	codeAttempts   int
	grace          time.Duration
	sweepInterval  time.Duration
	codeSource     func() int
	sweepTimer     int64
}

func NewRegistry(opts Options) *Registry {
	reg := &Registry{
		rooms:          make(map[string]*Room),
		clock:          opts.Clock,
		timers:         opts.Timers,
		content:        opts.Content,
		sender:         opts.Sender,
		hooks:          opts.Hooks,
		defaultScoring: opts.DefaultScoring,
		limits:         opts.Limits,
		codeAttempts:   opts.CodeAttempts,
		grace:          opts.EmptyRoomGrace,
		sweepInterval:  opts.SweepInterval,
		codeSource:     opts.CodeSource,
	}
	if reg.clock == nil {
		reg.clock = clockwork.NewRealClock()
	}
	if reg.timers == nil {
		reg.timers = timer.NewTimerManager(reg.clock)
	}
	if reg.sender == nil {
		reg.sender = nopSender{}
	}
	if reg.defaultScoring == "" {
		reg.defaultScoring = ScoringClosest
	}
	if reg.codeAttempts <= 0 {
		reg.codeAttempts = 64
	}
	if reg.codeSource == nil {
		reg.codeSource = func() int { return minCode + rand.IntN(codeSpace) }
	}
	return reg
}

// Start schedules the periodic sweep of abandoned rooms.
func (reg *Registry) Start() {
	if reg.sweepInterval <= 0 {
		return
	}
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	if reg.sweepTimer == 0 {
		reg.sweepTimer = reg.timers.AddTimer(reg.sweepInterval, reg.sweepInterval, reg.Sweep)
	}
}

// CreateRoom registers a new room hosted by hostIdentity. An empty scoring
// name selects the registry default.
func (reg *Registry) CreateRoom(hostIdentity, scoring string) (*Room, error) {
	policy, err := ParseScoring(scoring, reg.defaultScoring)
	if err != nil {
		return nil, err
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	code, err := reg.newCode()
	if err != nil {
		return nil, err
	}
	r := newRoom(code, hostIdentity, policy, reg)
	reg.rooms[code] = r

	logger.Log.Infow("Room created", "room", code, "scoring", policy)
	return r, nil
}

// newCode draws random codes until a free one turns up, then falls back to a
// scan from a random offset. Callers hold reg.mutex.
func (reg *Registry) newCode() (string, error) {
	for i := 0; i < reg.codeAttempts; i++ {
		code := strconv.Itoa(reg.codeSource())
		if _, taken := reg.rooms[code]; !taken && validCode(code) {
			return code, nil
		}
	}

	start := ((reg.codeSource()-minCode)%codeSpace + codeSpace) % codeSpace
	for i := 0; i < codeSpace; i++ {
		code := strconv.Itoa(minCode + (start+i)%codeSpace)
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrRegistryFull
}

func validCode(code string) bool {
	n, err := strconv.Atoi(code)
	return err == nil && len(code) == 4 && n >= minCode && n < minCode+codeSpace
}

func (reg *Registry) Lookup(code string) (*Room, error) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, code)
	}
	return r, nil
}

func (reg *Registry) IsHost(code, identity string) bool {
	r, err := reg.Lookup(code)
	return err == nil && r.IsHost(identity)
}

func (reg *Registry) Roster(code string) ([]Player, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return r.Roster(), nil
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

// Snapshots lists live rooms ordered by code.
func (reg *Registry) Snapshots() []Snapshot {
	rooms := reg.list()
	out := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (reg *Registry) list() []*Room {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Sweep removes rooms whose host has been gone for the grace period.
func (reg *Registry) Sweep() {
	now := reg.clock.Now()
	for _, r := range reg.list() {
		if r.abandoned(now, reg.grace) {
			reg.Remove(r.Code, ReasonHostLeft)
		}
	}
}

// Remove tears a room down and forgets its code. Unknown codes are a no-op.
func (reg *Registry) Remove(code, reason string) {
	reg.mutex.Lock()
	r, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	reg.mutex.Unlock()

	if ok {
		r.close(reason)
	}
}

// Shutdown stops the sweeper and closes every room, cancelling their timers.
func (reg *Registry) Shutdown() {
	reg.mutex.Lock()
	if reg.sweepTimer != 0 {
		reg.timers.RemoveTimer(reg.sweepTimer)
		reg.sweepTimer = 0
	}
	rooms := reg.rooms
	reg.rooms = make(map[string]*Room)
	reg.mutex.Unlock()

	for _, r := range rooms {
		r.close(ReasonShutdown)
	}
	logger.Log.Infof("Room registry shut down, %d rooms closed", len(rooms))
}
