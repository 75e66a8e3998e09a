package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v7"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"gorm.io/gorm"

	"github.com/shortcast/shortcast/dashboard"
	"github.com/shortcast/shortcast/downloader"
	"github.com/shortcast/shortcast/ffmpeg"
	"github.com/shortcast/shortcast/fields"
	"github.com/shortcast/shortcast/gateway"
	"github.com/shortcast/shortcast/pipeline"
	"github.com/shortcast/shortcast/telegram"
	"github.com/shortcast/shortcast/utils"
	"github.com/shortcast/shortcast/youtube"
)

var (
	appConfig       fields.Config
	database        *gorm.DB
	redisClient     *redis.Client
	auth            gateway.JWTAuth
	adminAuth       *gateway.AdminAuth
	ytClient        *youtube.Client
	fetcher         *downloader.Downloader
	prober          *ffmpeg.Prober
	tgClient        *telegram.Client
	pipelineService *pipeline.Service
	dashService     dashboard.Service
)

func configPath() string {
	if path := os.Getenv("SHORTCAST_CONFIG"); path != "" {
		return path
	}
	return "config.json"
}

// GetMainEngine function responsible for getting all of our routes to be delivered for gin
func GetMainEngine() *gin.Engine {

	route := gin.Default()
	p := ginprometheus.NewPrometheus("shortcast")
	p.Use(route)
	route.HandleMethodNotAllowed = true
	route.Use(gateway.RequestID())
	route.Use(gateway.OptionsMiddleware)

	route.POST("/run", auth.AuthMiddleware(), triggerRun)
	route.POST("/generate_token", adminAuth.Middleware(), generateToken)
	route.GET("/healthz", healthz)
	route.GET("/readyz", gateway.Readyz(readyChecks()))

	dashboardGroup := route.Group("/dashboard")
	{
		dashboardGroup.GET("/runs", dashService.GetRuns)
		dashboardGroup.GET("/runs/:uuid", dashService.GetRun)
		dashboardGroup.GET("/videos", dashService.GetVideos)
		dashboardGroup.GET("/count", dashService.VideosCount)
		dashboardGroup.GET("/daily", dashService.DailyStats)
	}
	return route
}

func init() {
	var err error

	appConfig, err = fields.LoadConfig(configPath())
	if err != nil {
		logrusLogger.Fatalf("error in parsing config: %v", err)
	}
	configureLogger(appConfig)
	logrusLogger.Printf("The final config file is: %#v", appConfig)

	database, err = utils.Database(appConfig.DBPath)
	if err != nil {
		logrusLogger.Fatalf("error in connecting to db: %v", err)
	}
	database.AutoMigrate(&fields.Video{}, &fields.Run{})
	redisClient = utils.GetRedis(appConfig.RedisAddr)

	auth = gateway.JWTAuth{}
	auth.Init(appConfig.JWTSecret)
	adminAuth, err = gateway.NewAdminAuth(appConfig.AdminKey)
	if err != nil {
		logrusLogger.Fatalf("error in preparing admin auth: %v", err)
	}
	binding.Validator = new(fields.DefaultValidator)

	ytClient, err = youtube.NewClient(context.Background(), appConfig.YouTubeAPIKey,
		appConfig.SearchQuery, appConfig.SearchResults, logrusLogger)
	if err != nil {
		logrusLogger.Fatalf("error in building the youtube client: %v", err)
	}
	fetcher = downloader.New(appConfig.YtdlpBin, appConfig.ScratchDir, appConfig.CookiesFile,
		appConfig.DownloadTimeout(), logrusLogger)
	fetcher.FfmpegBin = appConfig.FFmpegBin
	prober = ffmpeg.NewProber(appConfig.FFprobeBin)
	tgClient = telegram.NewClient(appConfig.TelegramToken, appConfig.TelegramChat, logrusLogger)

	pipelineService = &pipeline.Service{
		Db:       database,
		Redis:    redisClient,
		Config:   appConfig,
		Logger:   logrusLogger,
		Clock:    fields.SystemClock,
		YouTube:  ytClient,
		Fetcher:  fetcher,
		Prober:   prober,
		Telegram: tgClient,
	}
	dashService = dashboard.Service{Db: database, Redis: redisClient, Logger: logrusLogger}
}
