package session

import (
	"time"

	"github.com/damusix/cv.alonso.network/internal/types"
	"go.uber.org/zap"
)

// DefaultAutosaveDelay is the quiet period after the last edit before the
// draft is reconciled.
const DefaultAutosaveDelay = 500 * time.Millisecond

// Ticket is posted on AutosaveDue when the debounce window closes. Only the
// ticket of the latest scheduled window is honored.
type Ticket struct {
	Mode types.Mode
	gen  uint64
}

// autosave is the session's debounce timer. Each schedule supersedes the
// previous one; a ticket carries the generation it was scheduled under.
type autosave struct {
	delay time.Duration
	timer *time.Timer
	gen   uint64
	due   chan Ticket
	done  chan struct{}
}

func newAutosave(delay time.Duration) *autosave {
	return &autosave{
		delay: delay,
		due:   make(chan Ticket, 1),
		done:  make(chan struct{}),
	}
}

func (a *autosave) schedule(mode types.Mode) {
	a.cancel()
	t := Ticket{Mode: mode, gen: a.gen}
	due, done := a.due, a.done
	a.timer = time.AfterFunc(a.delay, func() {
		select {
		case due <- t:
		case <-done:
		}
	})
}

// cancel stops the pending timer. A ticket already posted becomes stale.
func (a *autosave) cancel() bool {
	a.gen++
	if a.timer == nil {
		return false
	}
	stopped := a.timer.Stop()
	a.timer = nil
	return stopped
}

func (a *autosave) current(t Ticket) bool {
	return a.timer != nil && t.gen == a.gen
}

// AutosaveDue delivers tickets for the host loop to pass back through
// Dispatch(AutosaveTick{...}).
func (s *Session) AutosaveDue() <-chan Ticket {
	return s.autosave.due
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.autosave.done
}

// AutosavePending reports whether an autosave window is open.
func (s *Session) AutosavePending() bool {
	return s.autosave.timer != nil
}

// Edited records a content change and restarts the autosave window.
func (s *Session) Edited() {
	if s.closed {
		return
	}
	s.autosave.schedule(s.mode)
}

// HandleAutosave reconciles the current text against the committed value of
// the current mode. Stale tickets are ignored and reported as false.
func (s *Session) HandleAutosave(t Ticket) (bool, error) {
	if s.closed || !s.autosave.current(t) || t.Mode != s.mode {
		s.logger.Debug("Ignoring stale autosave ticket", zap.String("mode", string(t.Mode)))
		return false, nil
	}
	s.autosave.timer = nil

	drafted, err := s.drafts.Reconcile(s.mode, s.editor.Text())
	if err != nil {
		return false, err
	}
	s.logger.Debug("Autosaved", zap.String("mode", string(s.mode)), zap.Bool("draft", drafted))
	return true, nil
}

// FlushAutosave runs the pending autosave now, if any.
func (s *Session) FlushAutosave() error {
	if s.closed || s.autosave.timer == nil {
		return nil
	}
	t := Ticket{Mode: s.mode, gen: s.autosave.gen}
	_, err := s.HandleAutosave(t)
	s.autosave.cancel()
	return err
}
