package client

import (
	"fmt"
	"sync"
	"time"
)

// ConnectionState represents the current state of the driver's connection.
type ConnectionState int

const (
	// StateFresh indicates the driver has never connected.
	StateFresh ConnectionState = iota
	// StateConnecting indicates a LOGIN exchange is in progress.
	StateConnecting
	// StateConnected indicates an active, logged-in connection.
	StateConnected
	// StateClosed indicates the connection has been closed and cannot be reused.
	StateClosed
)

// String returns the string representation of the connection state.
func (cs ConnectionState) String() string {
	switch cs {
	case StateFresh:
		return "FRESH"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// StateTransition describes a change in connection state.
type StateTransition struct {
	From      ConnectionState
	To        ConnectionState
	Timestamp time.Time
	Error     error
	Duration  time.Duration
	Metadata  map[string]interface{}
}

// StateChangeHandler is called when the connection state changes.
type StateChangeHandler func(transition StateTransition)

// StateManager manages connection state transitions and event handlers.
type StateManager struct {
	current        ConnectionState
	lastTransition time.Time
	handlers       []StateChangeHandler
	mu             sync.RWMutex
}

// NewStateManager creates a new state manager in the Fresh state.
func NewStateManager() *StateManager {
	return &StateManager{
		current:        StateFresh,
		lastTransition: time.Now(),
		handlers:       make([]StateChangeHandler, 0),
	}
}

// TransitionTo attempts to transition to a new state.
// Returns error if the transition is illegal.
//
// Legal transitions:
//   - Fresh → Connecting
//   - Connecting → Connected
//   - Connecting → Fresh (failed login)
//   - Connected → Closed
//   - Fresh → Closed
func (sm *StateManager) TransitionTo(newState ConnectionState, err error, metadata map[string]interface{}) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.isLegalTransition(sm.current, newState) {
		return fmt.Errorf("illegal state transition: %s -> %s", sm.current, newState)
	}

	now := time.Now()
	duration := now.Sub(sm.lastTransition)

	transition := StateTransition{
		From:      sm.current,
		To:        newState,
		Timestamp: now,
		Error:     err,
		Duration:  duration,
		Metadata:  metadata,
	}

	sm.current = newState
	sm.lastTransition = now

	handlers := make([]StateChangeHandler, len(sm.handlers))
	copy(handlers, sm.handlers)

	sm.mu.Unlock()
	for _, handler := range handlers {
		handler(transition)
	}
	sm.mu.Lock()

	return nil
}

func (sm *StateManager) isLegalTransition(from, to ConnectionState) bool {
	switch from {
	case StateFresh:
		return to == StateConnecting || to == StateClosed
	case StateConnecting:
		return to == StateConnected || to == StateFresh
	case StateConnected:
		return to == StateClosed
	case StateClosed:
		return false
	default:
		return false
	}
}

// OnStateChange registers a handler to be called on state transitions.
func (sm *StateManager) OnStateChange(handler StateChangeHandler) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.handlers = append(sm.handlers, handler)
}

// GetState returns the current connection state.
func (sm *StateManager) GetState() ConnectionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// GetLastTransition returns the most recent state transition.
func (sm *StateManager) GetLastTransition() StateTransition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return StateTransition{
		From:      sm.current,
		To:        sm.current,
		Timestamp: sm.lastTransition,
		Duration:  time.Since(sm.lastTransition),
	}
}
