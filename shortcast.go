// shortcast finds short engineering videos on YouTube and posts them to a
// Telegram channel: search, dedup against a ledger, download with yt-dlp,
// validate with ffprobe, upload via the Bot API. Runs are triggered over
// HTTP or on a configurable interval.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shortcast/shortcast/apperr"
	"github.com/shortcast/shortcast/gateway"
)

func main() {
	ctx := context.Background()
	checkTools(ctx)

	pipelineService.StartScheduler(ctx, appConfig.RunInterval())

	logrusLogger.Fatal(GetMainEngine().Run(fmt.Sprintf(":%d", appConfig.Port)))
}

// checkTools verifies at boot that the binaries the runtime image promises
// are actually present, and that the bot token works.
func checkTools(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	version, err := prober.Version(ctx)
	if err != nil {
		logrusLogger.Fatalf("ffprobe check failed: %v", err)
	}
	logrusLogger.Printf("ffprobe: %s", version)

	version, err = fetcher.Version(ctx)
	if err != nil {
		logrusLogger.Fatalf("yt-dlp check failed: %v", err)
	}
	logrusLogger.Printf("yt-dlp: %s", version)

	if appConfig.TelegramToken != "" {
		username, err := tgClient.GetMe(ctx)
		if err != nil {
			logrusLogger.Printf("telegram getMe failed, uploads will likely fail: %v", err)
		} else {
			logrusLogger.Printf("posting as @%s to %s", username, appConfig.TelegramChat)
		}
	}
}

// triggerRun is the function entrypoint: one HTTP call, one pipeline run.
func triggerRun(c *gin.Context) {
	report, err := pipelineService.Run(c.Request.Context(), "http")
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{
			"success": false,
			"error":   apperr.Message(err),
			"code":    apperr.Code(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"posted_count": report.Posted,
		"run_id":       report.RunID,
		"report":       report,
	})
}

// generateToken issues a trigger JWT to an operator holding the admin key.
func generateToken(c *gin.Context) {
	type request struct {
		Service string `json:"service"`
	}
	var req request
	_ = c.ShouldBindJSON(&req)
	if req.Service == "" {
		req.Service = "operator"
	}
	token, err := auth.GenerateJWT(req.Service)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrInternal, "could not sign token")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "service": req.Service})
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": true})
}

// readyChecks lists every dependency a run needs. Redis is the one the
// pipeline can degrade without.
func readyChecks() []gateway.ReadyCheck {
	checks := []gateway.ReadyCheck{
		{Name: "ffprobe", Check: func(ctx context.Context) error {
			_, err := prober.Version(ctx)
			return err
		}},
		{Name: "yt-dlp", Check: func(ctx context.Context) error {
			_, err := fetcher.Version(ctx)
			return err
		}},
		{Name: "db", Check: func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
	}
	if appConfig.TelegramToken != "" {
		checks = append(checks, gateway.ReadyCheck{Name: "telegram", Check: func(ctx context.Context) error {
			_, err := tgClient.GetMe(ctx)
			return err
		}})
	}
	if redisClient != nil {
		checks = append(checks, gateway.ReadyCheck{Name: "redis", Optional: true, Check: func(ctx context.Context) error {
			return redisClient.Ping().Err()
		}})
	}
	return checks
}
