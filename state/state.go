package state

import (
	"errors"
	"sync"
)

// StateMachine drives a set of states through registered transitions.
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// State is one node of a state machine. OnEnter and OnExit run while the
// machine is locked and must not call back into it.
type State interface {
	OnEnter()
	OnExit()
	GetID() string
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

var _ StateMachine = (*BaseStateMachine)(nil)

// BaseStateMachine only permits transitions registered with AddTransition.
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if !sm.allowed(sm.currentState.GetID(), newState.GetID()) {
		return ErrTransitionNotAllowed
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

// CanChange reports whether a transition to the state with id toID is currently allowed.
func (sm *BaseStateMachine) CanChange(toID string) bool {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.allowed(sm.currentState.GetID(), toID)
}

func (sm *BaseStateMachine) allowed(fromID, toID string) bool {
	conditions, exists := sm.transitions[fromID]
	if !exists {
		return false
	}
	condition, exists := conditions[toID]
	if !exists {
		return false
	}
	return condition == nil || condition()
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

// CurrentID is shorthand for GetCurrentState().GetID().
func (sm *BaseStateMachine) CurrentID() string {
	return sm.GetCurrentState().GetID()
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// Base gives states an id and no-op hooks to embed.
type Base struct {
	ID string
}

func (s *Base) GetID() string {
	return s.ID
}

func (s *Base) OnEnter() {}

func (s *Base) OnExit() {}
