package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/widget"
)

// Session is the widget state of one browser page.
type Session struct {
	ID string

	mu       sync.Mutex
	state    widget.State
	lastSeen time.Time
	debounce *filter.Debouncer
	bus      *EventBus
}

// State returns a snapshot of the session state.
func (s *Session) State() widget.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update replaces the state with fn(state) under the session lock and
// returns the new state. fn must not block.
func (s *Session) Update(fn func(widget.State) widget.State) widget.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	s.lastSeen = time.Now()
	return s.state
}

// Debounce schedules fn to update the state once the input has been quiet
// for the debounce period. Only the last call in a burst runs; its result
// is announced on the bus as a render event.
func (s *Session) Debounce(fn func(widget.State) widget.State) {
	s.debounce.Trigger(func() {
		s.Update(fn)
		if s.bus != nil {
			s.bus.Publish(Event{Kind: EventRender, Session: s.ID})
		}
	})
}

// Cancel drops a pending debounced update and reports whether there was
// one.
func (s *Session) Cancel() bool {
	return s.debounce.Stop()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionService keeps the widget sessions in memory.
type SessionService struct {
	wait     time.Duration
	bus      *EventBus
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewSessionService creates a session service. wait is the filter debounce
// period; a non-positive value uses filter.DefaultDebounce.
func NewSessionService(wait time.Duration, bus *EventBus, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		wait:     wait,
		bus:      bus,
		sessions: make(map[string]*Session),
		logger:   logger.With("component", "sessions"),
	}
}

// Create starts a new session in the pre-activation state.
func (s *SessionService) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		state:    widget.Reset(),
		lastSeen: time.Now(),
		debounce: filter.NewDebouncer(s.wait),
		bus:      s.bus,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session created", "session", sess.ID, "sessions", n)
	return sess
}

// Get returns a session by ID.
func (s *SessionService) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session and cancels its pending work.
func (s *SessionService) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Cancel()
	}
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *SessionService) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.Delete(id)
	}
	if len(stale) > 0 {
		s.logger.Info("sessions pruned", "count", len(stale))
	}
	return len(stale)
}
