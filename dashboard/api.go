// Package dashboard exposes read-only JSON views over the posting ledger
// and run history.
package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shortcast/shortcast/apperr"
	"github.com/shortcast/shortcast/fields"
)

type Service struct {
	Db     *gorm.DB
	Redis  *redis.Client
	Logger *logrus.Logger
}

func intQuery(c *gin.Context, key string, def, max int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// GetRuns lists the most recent pipeline runs.
func (s *Service) GetRuns(c *gin.Context) {
	limit := intQuery(c, "limit", 20, 200)
	runs, err := fields.RecentRuns(s.Db, limit)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"error":   err.Error(),
			"details": "error in database",
		}).Info("error in database")
		c.JSON(apperr.Status(apperr.ErrDatabase), apperr.Payload(apperr.Wrap(err, apperr.ErrDatabase, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": runs})
}

// GetRun returns one run by its public uuid.
func (s *Service) GetRun(c *gin.Context) {
	id := c.Params.ByName("uuid")
	run, err := fields.RunByUUID(id, s.Db)
	if err != nil {
		c.JSON(http.StatusNotFound, apperr.Payload(apperr.Wrap(err, apperr.ErrNotFound, "run not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": run})
}

// GetVideos pages the posted-video ledger, newest first.
func (s *Service) GetVideos(c *gin.Context) {
	perPage := intQuery(c, "per_page", 50, 200)
	page := intQuery(c, "page", 1, 0)
	videos, err := fields.RecentVideos(s.Db, (page-1)*perPage, perPage)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"error":   err.Error(),
			"details": "error in database",
		}).Info("error in database")
		c.JSON(apperr.Status(apperr.ErrDatabase), apperr.Payload(apperr.Wrap(err, apperr.ErrDatabase, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": videos, "page": page, "per_page": perPage})
}

// VideosCount returns the ledger total.
func (s *Service) VideosCount(c *gin.Context) {
	count, err := fields.VideosCount(s.Db)
	if err != nil {
		c.JSON(apperr.Status(apperr.ErrDatabase), apperr.Payload(apperr.Wrap(err, apperr.ErrDatabase, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": count})
}

// DailyStats aggregates posts per day for the last n days (default 30).
func (s *Service) DailyStats(c *gin.Context) {
	days := intQuery(c, "days", 30, 365)
	counts, err := fields.DailyPostCounts(s.Db, days)
	if err != nil {
		c.JSON(apperr.Status(apperr.ErrDatabase), apperr.Payload(apperr.Wrap(err, apperr.ErrDatabase, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": counts, "days": days})
}
