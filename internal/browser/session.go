// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/failure"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns the one browser the shell drives. The browser is launched on
// first use; once closed, a Session is never reopened.
type Session struct {
	id     string
	launch Launcher
	logger *zap.Logger

	// mu guards state and page so Close may be called from the signal path.
	mu    sync.Mutex
	state State
	page  Page
}

// NewSession creates an uninitialized Session. No browser is started until Page is called.
func NewSession(launch Launcher, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:     id,
		launch: launch,
		logger: logger.Named("session").With(zap.String("session_id", id)),
		state:  StateUninitialized,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Page returns the live page, launching the browser if this is the first use.
func (s *Session) Page(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return s.page, nil
	case StateClosed:
		return nil, failure.New(failure.CodeSessionClosed, s.id, nil)
	}

	page, err := s.launch(ctx)
	if err != nil {
		s.logger.Error("Browser launch failed", zap.Error(err))
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	s.page = page
	s.state = StateActive
	s.logger.Info("Browser session active")
	return page, nil
}

// Close releases the browser. It is safe to call more than once and from any
// state; an uninitialized Session simply becomes closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	page := s.page
	s.page = nil
	s.state = StateClosed

	if page == nil {
		return nil
	}
	if err := page.Close(); err != nil {
		s.logger.Warn("Error while closing browser", zap.Error(err))
		return err
	}
	s.logger.Info("Browser session closed")
	return nil
}
