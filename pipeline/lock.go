package pipeline

import (
	"time"

	"github.com/shortcast/shortcast/apperr"
)

const (
	runLockKey   = "shortcast:run_lock"
	postedSetKey = "shortcast:posted_ids"

	// generous upper bound; a run downloading and uploading a couple of
	// videos finishes well inside it
	runLockTTL = 30 * time.Minute
)

// acquireLock makes runs mutually exclusive. The in-process mutex covers a
// single instance; the Redis lock extends that across replicas sharing one
// Redis. The returned release function undoes both.
func (s *Service) acquireLock(runID string) (func(), error) {
	if !s.mu.TryLock() {
		return nil, apperr.ErrRunActive
	}
	if s.Redis != nil {
		acquired, err := s.Redis.SetNX(runLockKey, runID, runLockTTL).Result()
		if err != nil {
			// a broken Redis degrades to process-local locking
			s.Logger.WithField("error", err.Error()).Info("redis lock unavailable, using local lock only")
		} else if !acquired {
			s.mu.Unlock()
			return nil, apperr.ErrRunActive
		}
	}
	return func() {
		if s.Redis != nil {
			if current, err := s.Redis.Get(runLockKey).Result(); err == nil && current == runID {
				s.Redis.Del(runLockKey)
			}
		}
		s.mu.Unlock()
	}, nil
}
