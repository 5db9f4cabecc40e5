// internal/collab/sweeper.go
package collab

import (
	"time"

	"go.uber.org/zap"
)

func (s *Session) startSweeper() {
	s.mu.Lock()
	if s.sweepStop != nil || s.disposed {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.sweepStop = stop
	interval := s.cfg.SweepInterval
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopSweeper() {
	s.mu.Lock()
	stop := s.sweepStop
	s.sweepStop = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Sweep evicts ephemeral entries past their timeout and returns the number
// removed. Entries within their window are left untouched. A sweep that
// prunes nothing does not fire the update callback, so consumers never
// recompute over an unchanged store.
func (s *Session) Sweep() int {
	s.mu.Lock()
	now := s.cfg.Clock()
	pruned := 0

	for id, sig := range s.cursors {
		if now.Sub(sig.ReceivedAt) > s.cfg.CursorTTL {
			delete(s.cursors, id)
			pruned++
		}
	}
	for id, sig := range s.editing {
		if now.Sub(sig.ReceivedAt) > s.cfg.EditingTTL {
			delete(s.editing, id)
			pruned++
		}
	}
	if s.cfg.ActivityTTL > 0 {
		for id, sig := range s.activity {
			if now.Sub(sig.ReceivedAt) > s.cfg.ActivityTTL {
				delete(s.activity, id)
				pruned++
			}
		}
	}
	s.mu.Unlock()

	if pruned > 0 {
		s.logger.Debug("Swept stale collaboration signals", zap.Int("pruned", pruned))
		s.notify()
	}
	return pruned
}
