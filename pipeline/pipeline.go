// Package pipeline runs the search → dedup → download → probe → post loop.
// One Run is one invocation of the service, whether triggered over HTTP or
// by the interval scheduler.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shortcast/shortcast/apperr"
	"github.com/shortcast/shortcast/ffmpeg"
	"github.com/shortcast/shortcast/fields"
	"github.com/shortcast/shortcast/telegram"
	"github.com/shortcast/shortcast/youtube"
)

// Searcher is the slice of the YouTube client the pipeline uses.
type Searcher interface {
	Search(ctx context.Context) ([]youtube.Candidate, error)
	Details(ctx context.Context, ids []string) (map[string]time.Duration, error)
}

// Fetcher downloads one video into scratch space.
type Fetcher interface {
	Fetch(ctx context.Context, videoID, videoURL string) (string, error)
	Cleanup(videoID string)
}

// Prober validates a downloaded file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeResult, error)
}

// Sender posts a video file to the channel.
type Sender interface {
	SendVideo(ctx context.Context, path, caption string) (int64, error)
}

// Service wires the pipeline collaborators together.
type Service struct {
	Db       *gorm.DB
	Redis    *redis.Client
	Config   fields.Config
	Logger   *logrus.Logger
	Clock    fields.Clock
	YouTube  Searcher
	Fetcher  Fetcher
	Prober   Prober
	Telegram Sender

	mu sync.Mutex
}

// Report is what a run hands back to its trigger.
type Report struct {
	RunID            string `json:"run_id"`
	Posted           int    `json:"posted_count"`
	Scanned          int    `json:"scanned"`
	Duplicates       int    `json:"duplicates"`
	TooLong          int    `json:"too_long"`
	DownloadFailures int    `json:"download_failures"`
}

// Run executes one full pipeline pass. Candidate-level failures are skipped;
// only an unusable search result fails the run itself.
func (s *Service) Run(ctx context.Context, trigger string) (Report, error) {
	runID := uuid.NewString()
	report := Report{RunID: runID}

	release, err := s.acquireLock(runID)
	if err != nil {
		return report, err
	}
	defer release()

	started := s.Clock.Now()
	run, err := fields.NewRun(runID, trigger, s.Clock, s.Db)
	if err != nil {
		return report, apperr.Wrap(err, apperr.ErrDatabase, "could not record the run")
	}
	runsTotal.WithLabelValues(trigger).Inc()
	s.Logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"trigger": trigger,
	}).Info("pipeline run started")

	candidates, err := s.YouTube.Search(ctx)
	if err != nil {
		wrapped := apperr.Wrap(err, apperr.ErrYouTube, "youtube search failed")
		s.finish(run, &report, fields.RunStatusFailed, wrapped, started)
		return report, wrapped
	}

	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.VideoID)
	}
	durations, err := s.YouTube.Details(ctx, ids)
	if err != nil {
		wrapped := apperr.Wrap(err, apperr.ErrYouTube, "youtube details lookup failed")
		s.finish(run, &report, fields.RunStatusFailed, wrapped, started)
		return report, wrapped
	}

	for _, candidate := range candidates {
		if report.Posted >= s.Config.MaxPostsPerRun {
			break
		}
		if ctx.Err() != nil {
			break
		}
		report.Scanned++
		s.process(ctx, candidate, durations, runID, &report)
	}

	s.finish(run, &report, fields.RunStatusSucceeded, nil, started)
	if report.Posted == 0 {
		s.Logger.WithField("run_id", runID).Info("no suitable videos found in this run")
	}
	return report, nil
}

// process handles a single candidate end to end. Every failure path logs and
// returns; the run carries on with the next candidate.
func (s *Service) process(ctx context.Context, candidate youtube.Candidate, durations map[string]time.Duration, runID string, report *Report) {
	logger := s.Logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"video_id": candidate.VideoID,
	})

	posted, err := s.alreadyPosted(candidate.VideoID)
	if err != nil {
		logger.WithField("error", err.Error()).Info("dedup lookup failed, skipping")
		return
	}
	if posted {
		report.Duplicates++
		return
	}

	duration, ok := durations[candidate.VideoID]
	if !ok {
		logger.Info("no duration details, skipping")
		return
	}
	maxDuration := time.Duration(s.Config.MaxDurationSecs) * time.Second
	if duration <= 0 || duration >= maxDuration {
		report.TooLong++
		return
	}

	path, err := s.Fetcher.Fetch(ctx, candidate.VideoID, candidate.URL())
	if err != nil {
		report.DownloadFailures++
		downloadFailures.Inc()
		logger.WithField("error", err.Error()).Info("download failed, skipping")
		s.Fetcher.Cleanup(candidate.VideoID)
		return
	}
	defer s.Fetcher.Cleanup(candidate.VideoID)

	probe, err := s.Prober.Probe(ctx, path)
	if err != nil {
		report.DownloadFailures++
		downloadFailures.Inc()
		logger.WithField("error", err.Error()).Info("probe failed, skipping")
		return
	}
	if !probe.Playable() {
		report.DownloadFailures++
		downloadFailures.Inc()
		logger.Info("downloaded file is not playable, skipping")
		return
	}

	caption := telegram.BuildCaption(candidate.Title, candidate.URL(), s.Config.Hashtags)
	messageID, err := s.Telegram.SendVideo(ctx, path, caption)
	if err != nil {
		logger.WithField("error", err.Error()).Error("telegram rejected the upload")
		return
	}

	s.recordPost(candidate, duration, messageID, runID, logger)
	report.Posted++
	videosPosted.Inc()
	logger.WithField("message_id", messageID).Info("successfully posted")
}

// recordPost writes the ledger entry. The upload already happened, so a
// ledger failure is logged at error level but never undone.
func (s *Service) recordPost(candidate youtube.Candidate, duration time.Duration, messageID int64, runID string, logger *logrus.Entry) {
	video := fields.NewVideo(s.Db)
	video.VideoID = candidate.VideoID
	video.Title = candidate.Title
	video.Channel = candidate.Channel
	video.DurationSecs = int(duration / time.Second)
	video.MessageID = messageID
	video.RunUUID = runID
	video.PostedAt = s.Clock.Now()
	if err := video.Save(); err != nil {
		logger.WithField("error", err.Error()).Error("posted to telegram but could not record the ledger entry")
		return
	}
	if s.Redis != nil {
		if err := s.Redis.SAdd(postedSetKey, candidate.VideoID).Err(); err != nil {
			logger.WithField("error", err.Error()).Info("could not cache the posted id")
		}
	}
}

// alreadyPosted consults the Redis cache first, the ledger second. The
// ledger answer is authoritative; the cache only saves a query.
func (s *Service) alreadyPosted(videoID string) (bool, error) {
	if s.Redis != nil {
		cached, err := s.Redis.SIsMember(postedSetKey, videoID).Result()
		if err == nil && cached {
			return true, nil
		}
	}
	return fields.VideoPosted(videoID, s.Db)
}

func (s *Service) finish(run *fields.Run, report *Report, status string, runErr error, started time.Time) {
	run.Scanned = report.Scanned
	run.Duplicates = report.Duplicates
	run.TooLong = report.TooLong
	run.DownloadFailures = report.DownloadFailures
	run.Posted = report.Posted
	if err := run.Finish(status, runErr, s.Clock); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"run_id": run.UUID,
			"error":  err.Error(),
		}).Error("could not finalize the run record")
	}
	runDuration.Observe(s.Clock.Now().Sub(started).Seconds())
}
