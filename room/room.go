// room/room.go
package room

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/quizroom/content"
	"github.com/wfunc/quizroom/judge"
	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/network"
	"github.com/wfunc/quizroom/timer"
)

type Scoring string

const (
	ScoringClosest Scoring = "closest"
	ScoringBuzzer  Scoring = "buzzer"
)

// ParseScoring maps a policy name to a Scoring. An empty name yields def.
func ParseScoring(name string, def Scoring) (Scoring, error) {
	switch Scoring(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return def, nil
	case ScoringClosest:
		return ScoringClosest, nil
	case ScoringBuzzer:
		return ScoringBuzzer, nil
	}
	return "", fmt.Errorf("%w: unknown scoring %q", ErrValidation, name)
}

// ContentSource resolves content sets by id and knows the process-wide default.
type ContentSource interface {
	Get(id string) (*content.Set, error)
	Default() (*content.Set, error)
}

type Limits struct {
	MaxNameLength   int
	MaxAnswerLength int
}

type JoinResult struct {
	RoomCode string
	Name     string
	Score    int
	Rejoined bool
}

// Room is one live game. All state is guarded by mu; events sent while the
// lock is held keep their order per room.
type Room struct {
	Code         string
	HostIdentity string
	Scoring      Scoring
	CreatedAt    time.Time

	mu           sync.Mutex
	hostStatus   ConnectionStatus
	hostLeftAt   time.Time
	participants *participantTable
	round        *round
	machine      *roundMachine
	override     *content.Set
	buzzer       *judge.Buzzer
	policy       judge.Policy
	closed       bool
	deferred     []func()

	content ContentSource
	sender  Sender
	timers  *timer.TimerManager
	clock   clockwork.Clock
	hooks   Hooks
	limits  Limits
}

func newRoom(code, hostIdentity string, scoring Scoring, reg *Registry) *Room {
	r := &Room{
		Code:         code,
		HostIdentity: hostIdentity,
		Scoring:      scoring,
		CreatedAt:    reg.clock.Now(),
		hostStatus:   StatusActive,
		participants: newParticipantTable(),
		round:        newRound(),
		buzzer:       judge.NewBuzzer(),
		policy:       judge.PolicyFor(string(scoring)),
		content:      reg.content,
		sender:       reg.sender,
		timers:       reg.timers,
		clock:        reg.clock,
		hooks:        reg.hooks,
		limits:       reg.limits,
	}
	r.machine = newRoundMachine(r)
	return r
}

func (r *Room) lock() {
	r.mu.Lock()
}

// unlock releases the room and runs hooks queued while it was held.
func (r *Room) unlock() {
	fns := r.deferred
	r.deferred = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (r *Room) after(fn func()) {
	r.deferred = append(r.deferred, fn)
}

func (r *Room) IsHost(identity string) bool {
	return identity != "" && identity == r.HostIdentity
}

func (r *Room) Mode() Mode {
	r.lock()
	defer r.unlock()
	return r.machine.mode()
}

func (r *Room) QuestionIndex() int {
	r.lock()
	defer r.unlock()
	return r.round.index
}

// Roster returns the players in join order.
func (r *Room) Roster() []Player {
	r.lock()
	defer r.unlock()
	return r.participants.roster()
}

func (r *Room) Scoreboard() []Standing {
	r.lock()
	defer r.unlock()
	return r.participants.scoreboard()
}

func (r *Room) BuzzLog() []judge.Buzz {
	r.lock()
	defer r.unlock()
	return r.buzzer.Log()
}

func (r *Room) BuzzerLocked() bool {
	r.lock()
	defer r.unlock()
	return r.buzzer.Locked()
}

// Submissions returns the current round's answers in first-submitted order.
func (r *Room) Submissions() []judge.Submission {
	r.lock()
	defer r.unlock()
	return r.round.submissions.List()
}

func (r *Room) Snapshot() Snapshot {
	r.lock()
	defer r.unlock()

	snap := Snapshot{
		Code:             r.Code,
		Scoring:          string(r.Scoring),
		Mode:             string(r.machine.mode()),
		QuestionIndex:    r.round.index,
		Players:          r.participants.len(),
		ConnectedPlayers: len(r.participants.connected()),
		HostConnected:    r.hostStatus == StatusActive,
		CreatedAt:        r.CreatedAt,
	}
	if set := r.currentSet(); set != nil {
		snap.ContentID = set.ID
	}
	return snap
}

func (r *Room) currentSet() *content.Set {
	if r.override != nil {
		return r.override
	}
	return r.round.set
}

// defaultContent loads the process-wide default set. It may read from disk,
// so callers must not hold the room lock.
func (r *Room) defaultContent() (*content.Set, error) {
	if r.content == nil {
		return nil, ErrNoContentAvailable
	}
	set, err := r.content.Default()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContentAvailable, err)
	}
	return set, nil
}

// SelectContent sets the room's content override. Host only.
func (r *Room) SelectContent(identity, contentID string) (*content.Set, error) {
	if !r.IsHost(identity) {
		return nil, fmt.Errorf("%w: only the host can select content", ErrUnauthorized)
	}
	if r.content == nil {
		return nil, ErrNoContentAvailable
	}
	// loading may touch disk, keep it outside the room lock
	set, err := r.content.Get(contentID)
	if err != nil {
		return nil, err
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	r.override = set
	logger.Log.Infow("Content selected", "room", r.Code, "content", set.ID)
	return set, nil
}

// Join adds a player, or hands a disconnected player's slot back to a
// reconnecting connection with the same name.
func (r *Room) Join(identity, name string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if limit := r.limits.MaxNameLength; limit > 0 && utf8.RuneCountInString(name) > limit {
		return JoinResult{}, fmt.Errorf("%w: name longer than %d characters", ErrValidation, limit)
	}
	if r.IsHost(identity) {
		return JoinResult{}, fmt.Errorf("%w: the host cannot join as a player", ErrInvalidState)
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return JoinResult{}, ErrRoomNotFound
	}
	if p, ok := r.participants.get(identity); ok && p.Connected() {
		return JoinResult{}, ErrAlreadyJoined
	}

	var (
		player   *Player
		rejoined bool
	)
	if p, ok := r.participants.get(identity); ok {
		p.Status = StatusActive
		player, rejoined = p, true
	} else if p, ok := r.participants.findDisconnected(name); ok {
		old := p.Identity
		r.participants.reclaim(p, identity)
		r.round.submissions.Rekey(old, identity)
		r.buzzer.Rekey(old, identity)
		player, rejoined = p, true
	} else {
		player = r.participants.add(identity, name, r.clock.Now())
	}

	logger.Log.Infow("Player joined", "room", r.Code, "name", player.Name, "rejoined", rejoined)
	r.sendRoster()
	return JoinResult{RoomCode: r.Code, Name: player.Name, Score: player.Score, Rejoined: rejoined}, nil
}

// Advance moves to the next question, or to game over past the last one. Host only.
func (r *Room) Advance(identity string) error {
	if !r.IsHost(identity) {
		return fmt.Errorf("%w: only the host can advance", ErrUnauthorized)
	}

	// an override is never cleared, so the default is only needed without one
	r.lock()
	hasOverride := r.override != nil
	r.unlock()
	var (
		def    *content.Set
		defErr error
	)
	if !hasOverride {
		def, defErr = r.defaultContent()
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	if !r.machine.CanChange(string(ModeActive)) {
		return fmt.Errorf("%w: cannot advance while %s", ErrInvalidState, r.machine.mode())
	}

	set := r.override
	if set == nil {
		if defErr != nil {
			return defErr
		}
		set = def
	}

	rd := r.round
	rd.index++
	rd.set = set
	if rd.index >= set.Len() {
		return r.machine.ChangeState(r.machine.gameOver)
	}
	return r.machine.ChangeState(r.machine.active)
}

// Submit records or overwrites a player's answer for the active question.
func (r *Room) Submit(identity, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", ErrValidation)
	}
	if limit := r.limits.MaxAnswerLength; limit > 0 && len(answer) > limit {
		return fmt.Errorf("%w: answer longer than %d bytes", ErrValidation, limit)
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	p, ok := r.participants.get(identity)
	if !ok || !p.Connected() {
		return fmt.Errorf("%w: not a player in this room", ErrUnauthorized)
	}
	if r.machine.mode() != ModeActive || r.round.resolved.Load() {
		return fmt.Errorf("%w: no question is open", ErrInvalidState)
	}

	r.round.submissions.Record(identity, answer, r.clock.Now())
	r.checkAllSubmitted(TriggerAllSubmitted)
	return nil
}

// Buzz presses the room's buzzer. A press while locked is dropped and reports false.
func (r *Room) Buzz(identity string) (bool, error) {
	if r.Scoring != ScoringBuzzer {
		return false, fmt.Errorf("%w: room does not use the buzzer", ErrInvalidState)
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return false, ErrRoomNotFound
	}
	p, ok := r.participants.get(identity)
	if !ok || !p.Connected() {
		return false, fmt.Errorf("%w: not a player in this room", ErrUnauthorized)
	}

	b := judge.Buzz{
		Identity:      identity,
		Name:          p.Name,
		Time:          r.clock.Now(),
		QuestionIndex: r.round.index,
	}
	if !r.buzzer.Press(b) {
		logger.Log.Debugw("Buzz dropped, buzzer locked", "room", r.Code, "name", p.Name)
		return false, nil
	}

	logger.Log.Infow("Buzz locked", "room", r.Code, "name", p.Name)
	r.toHost(network.MsgTypeBuzzNotify, BuzzEvent{RoomCode: r.Code, Buzz: b})
	if hook := r.hooks.OnBuzz; hook != nil {
		code := r.Code
		r.after(func() { hook(code) })
	}
	return true, nil
}

// Reset clears the buzzer lock and log. Host only. Scores and the question index are untouched.
func (r *Room) Reset(identity string) error {
	if !r.IsHost(identity) {
		return fmt.Errorf("%w: only the host can reset", ErrUnauthorized)
	}

	r.lock()
	defer r.unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	r.buzzer.Reset()
	r.toRoom(network.MsgTypeBuzzerReset, RoomEvent{RoomCode: r.Code})
	return nil
}

// Disconnect marks the host or a player as gone. It reports whether identity
// belonged to the room.
func (r *Room) Disconnect(identity string) bool {
	r.lock()
	defer r.unlock()
	if r.closed {
		return false
	}

	if r.IsHost(identity) {
		if r.hostStatus == StatusDisconnected {
			return true
		}
		r.hostStatus = StatusDisconnected
		r.hostLeftAt = r.clock.Now()
		logger.Log.Infow("Host left", "room", r.Code)
		r.toRoom(network.MsgTypeHostLeft, RoomEvent{RoomCode: r.Code})
		return true
	}

	p, ok := r.participants.get(identity)
	if !ok {
		return false
	}
	if p.Status == StatusDisconnected {
		return true
	}
	p.Status = StatusDisconnected
	logger.Log.Infow("Player left", "room", r.Code, "name", p.Name)
	r.sendRoster()
	if r.machine.mode() == ModeActive {
		r.checkAllSubmitted(TriggerDisconnect)
	}
	return true
}

// checkAllSubmitted resolves early once every connected player has answered.
func (r *Room) checkAllSubmitted(trigger string) {
	connected := r.participants.connected()
	if len(connected) == 0 {
		return
	}
	for _, p := range connected {
		if !r.round.submissions.Has(p.Identity) {
			return
		}
	}
	r.resolve(trigger)
}

// resolve closes the active question exactly once. Later callers are no-ops.
func (r *Room) resolve(trigger string) bool {
	if r.machine.mode() != ModeActive {
		return false
	}
	if !r.round.resolved.CompareAndSwap(false, true) {
		return false
	}
	r.round.trigger = trigger
	if err := r.machine.ChangeState(r.machine.judged); err != nil {
		logger.Log.Errorw("Failed to judge round", "room", r.Code, "error", err)
		return false
	}
	return true
}

// expire is the deadline timer callback. Timers from earlier questions carry a
// stale token and do nothing.
func (r *Room) expire(token uint64) {
	r.lock()
	defer r.unlock()
	if r.closed || r.round.token != token {
		return
	}
	r.resolve(TriggerTimer)
}

func (r *Room) cancelTimer() {
	if r.round.timerID != 0 {
		r.timers.RemoveTimer(r.round.timerID)
		r.round.timerID = 0
	}
}

// abandoned reports whether the host has been gone for at least grace.
func (r *Room) abandoned(now time.Time, grace time.Duration) bool {
	r.lock()
	defer r.unlock()
	return !r.closed && r.hostStatus == StatusDisconnected && now.Sub(r.hostLeftAt) >= grace
}

// close tears the room down: the round timer is cancelled and connected players are told.
func (r *Room) close(reason string) {
	r.lock()
	defer r.unlock()
	if r.closed {
		return
	}
	r.cancelTimer()
	r.toRoom(network.MsgTypeRoomClosed, RoomClosedEvent{RoomCode: r.Code, Reason: reason})
	r.closed = true
	r.buzzer.Reset()
	r.round.submissions.Clear()
	logger.Log.Infow("Room closed", "room", r.Code, "reason", reason)
	if hook := r.hooks.OnRoomClosed; hook != nil {
		closed := ClosedRoom{Code: r.Code, Reason: reason, Members: r.members()}
		r.after(func() { hook(closed) })
	}
}

// members is the host and every player identity, connected or not.
func (r *Room) members() []string {
	ids := []string{r.HostIdentity}
	for _, p := range r.participants.roster() {
		ids = append(ids, p.Identity)
	}
	return ids
}

// audience is every connected identity in the room, host first.
func (r *Room) audience() []string {
	ids := make([]string, 0, r.participants.len()+1)
	if r.hostStatus == StatusActive {
		ids = append(ids, r.HostIdentity)
	}
	for _, p := range r.participants.connected() {
		ids = append(ids, p.Identity)
	}
	return ids
}

func (r *Room) toRoom(msgID uint16, payload any) {
	r.sender.ToRoom(r.Code, r.audience(), msgID, payload)
}

func (r *Room) toHost(msgID uint16, payload any) {
	if r.hostStatus != StatusActive {
		return
	}
	r.sender.ToHost(r.Code, r.HostIdentity, msgID, payload)
}

func (r *Room) sendRoster() {
	r.toHost(network.MsgTypeRosterUpdated, RosterEvent{RoomCode: r.Code, Players: r.participants.views()})
}
