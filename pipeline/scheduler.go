package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/shortcast/shortcast/apperr"
)

// StartScheduler triggers a run every interval until ctx is cancelled. A
// zero interval disables scheduling, leaving HTTP triggers as the only way
// to start a run.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := s.Run(ctx, "scheduler")
				if err != nil {
					if errors.Is(err, apperr.ErrRunActive) {
						s.Logger.Info("scheduled run skipped, another run is active")
						continue
					}
					s.Logger.WithField("error", err.Error()).Error("scheduled run failed")
					continue
				}
				s.Logger.WithField("posted", report.Posted).Info("scheduled run finished")
			}
		}
	}()
}
