package fields

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Video is the posted-video ledger. A row exists for every video the service
// has ever pushed to the channel; the unique index on video_id is what makes
// reposting impossible even across racing runs.
type Video struct {
	gorm.Model
	VideoID      string    `json:"video_id" gorm:"index:idx_video_id,unique"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	DurationSecs int       `json:"duration_secs"`
	MessageID    int64     `json:"message_id"`
	RunUUID      string    `json:"run_uuid"`
	PostedAt     time.Time `json:"posted_at"`
	db           *gorm.DB
}

func NewVideo(db *gorm.DB) *Video {
	return &Video{db: db}
}

// Save persists the ledger entry. DoNothing on conflict keeps a racing run
// from erroring out after the upload already went through.
func (v *Video) Save() error {
	return v.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		DoNothing: true,
	}).Create(v).Error
}

// VideoPosted reports whether a video id is already in the ledger.
func VideoPosted(videoID string, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Video{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecentVideos pages the ledger, newest first.
func RecentVideos(db *gorm.DB, offset, limit int) ([]Video, error) {
	var videos []Video
	result := db.Model(&Video{}).Order("posted_at desc").Offset(offset).Limit(limit).Find(&videos)
	return videos, result.Error
}

func VideosCount(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Video{}).Count(&count).Error
	return count, err
}

// DailyCount is a per-day posting total for the dashboard.
type DailyCount struct {
	Day   string `json:"day"`
	Posts int64  `json:"posts"`
}

// DailyPostCounts aggregates ledger entries per day over the last days days.
func DailyPostCounts(db *gorm.DB, days int) ([]DailyCount, error) {
	since := time.Now().AddDate(0, 0, -days)
	var counts []DailyCount
	result := db.Model(&Video{}).
		Select("date(posted_at) as day, count(*) as posts").
		Where("posted_at >= ?", since).
		Group("date(posted_at)").
		Order("day desc").
		Scan(&counts)
	return counts, result.Error
}

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run records a single pipeline invocation and its counters.
type Run struct {
	gorm.Model
	UUID             string     `json:"uuid" gorm:"index:idx_run_uuid,unique"`
	Trigger          string     `json:"trigger"`
	Status           string     `json:"status"`
	Scanned          int        `json:"scanned"`
	Duplicates       int        `json:"duplicates"`
	TooLong          int        `json:"too_long"`
	DownloadFailures int        `json:"download_failures"`
	Posted           int        `json:"posted"`
	ErrorText        string     `json:"error,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	db               *gorm.DB
}

// NewRun starts a run record in the running state and persists it.
func NewRun(uuid, trigger string, clock Clock, db *gorm.DB) (*Run, error) {
	run := &Run{
		UUID:      uuid,
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: clock.Now(),
		db:        db,
	}
	if err := db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish stamps the run with its terminal status and flushes the counters.
func (r *Run) Finish(status string, runErr error, clock Clock) error {
	now := clock.Now()
	r.Status = status
	r.FinishedAt = &now
	if runErr != nil {
		r.ErrorText = runErr.Error()
	}
	return r.db.Save(r).Error
}

// RunByUUID retrieves a run record by its public identifier.
func RunByUUID(uuid string, db *gorm.DB) (Run, error) {
	var run Run
	if result := db.First(&run, "uuid = ?", uuid); errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return run, errors.New("run not found")
	} else if result.Error != nil {
		return run, result.Error
	}
	run.db = db
	return run, nil
}

// RecentRuns lists the latest run records, newest first.
func RecentRuns(db *gorm.DB, limit int) ([]Run, error) {
	var runs []Run
	result := db.Model(&Run{}).Order("started_at desc").Limit(limit).Find(&runs)
	return runs, result.Error
}
