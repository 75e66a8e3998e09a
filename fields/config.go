package fields

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"

	"github.com/shortcast/shortcast/apperr"
)

// Config holds every runtime knob for the service. Values are read from an
// optional JSON file first, then overridden from the environment, so a bare
// deployment can run on env vars alone.
type Config struct {
	YouTubeAPIKey   string   `json:"youtube_api_key" env:"YOUTUBE_API_KEY"`
	SearchQuery     string   `json:"search_query" env:"SEARCH_QUERY"`
	SearchResults   int64    `json:"search_results" env:"SEARCH_RESULTS"`
	MaxPostsPerRun  int      `json:"max_posts_per_run" env:"MAX_POSTS_PER_RUN"`
	MaxDurationSecs int      `json:"max_duration_secs" env:"MAX_DURATION_SECS"`
	TelegramToken   string   `json:"telegram_token" env:"TELEGRAM_TOKEN"`
	TelegramChat    string   `json:"telegram_channel" env:"TELEGRAM_CHANNEL" binding:"omitempty,chatid"`
	Hashtags        []string `json:"hashtags" env:"HASHTAGS" envSeparator:","`

	ScratchDir          string `json:"scratch_dir" env:"SCRATCH_DIR"`
	CookiesFile         string `json:"cookies_file" env:"COOKIES_FILE"`
	YtdlpBin            string `json:"ytdlp_bin" env:"YTDLP_BIN"`
	FFprobeBin          string `json:"ffprobe_bin" env:"FFPROBE_BIN"`
	FFmpegBin           string `json:"ffmpeg_bin" env:"FFMPEG_BIN"`
	DownloadTimeoutSecs int    `json:"download_timeout_secs" env:"DOWNLOAD_TIMEOUT_SECS"`

	DBPath    string `json:"db_path" env:"DB_PATH"`
	RedisAddr string `json:"redis_addr" env:"REDIS_ADDR"`

	Port            int    `json:"port" env:"PORT"`
	JWTSecret       string `json:"jwt_secret" env:"JWT_SECRET"`
	AdminKey        string `json:"admin_key" env:"ADMIN_KEY"`
	RunIntervalMins int    `json:"run_interval_mins" env:"RUN_INTERVAL_MINS"`
	IsDebug         bool   `json:"is_debug" env:"DEBUG"`
}

// Defaults fills any value the config file and environment left empty. The
// search and hashtag defaults are the channel the service was first built
// for; override them per deployment.
func (c *Config) Defaults() {
	if c.SearchQuery == "" {
		c.SearchQuery = "مهندسی مکانیک OR Mechanical Engineering"
	}
	if c.SearchResults <= 0 || c.SearchResults > 50 {
		c.SearchResults = 50
	}
	if c.MaxPostsPerRun <= 0 {
		c.MaxPostsPerRun = 2
	}
	if c.MaxDurationSecs <= 0 {
		c.MaxDurationSecs = 180
	}
	if len(c.Hashtags) == 0 {
		c.Hashtags = []string{"#مهندسی_مکانیک", "#MechanicalEngineering"}
	}
	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
	if c.YtdlpBin == "" {
		c.YtdlpBin = "yt-dlp"
	}
	if c.FFprobeBin == "" {
		c.FFprobeBin = "ffprobe"
	}
	if c.FFmpegBin == "" {
		c.FFmpegBin = "ffmpeg"
	}
	if c.DownloadTimeoutSecs <= 0 {
		c.DownloadTimeoutSecs = 300
	}
	if c.DBPath == "" {
		c.DBPath = "shortcast.db"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
}

// DownloadTimeout returns the per-download deadline.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSecs) * time.Second
}

// RunInterval returns the scheduler period, zero when scheduling is off.
func (c *Config) RunInterval() time.Duration {
	if c.RunIntervalMins <= 0 {
		return 0
	}
	return time.Duration(c.RunIntervalMins) * time.Minute
}

// LoadConfig reads the JSON config file at path (when it exists), layers the
// environment on top and applies defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, &config); err != nil {
				return config, err
			}
		} else if !os.IsNotExist(err) {
			return config, err
		}
	}
	if err := env.Parse(&config); err != nil {
		return config, err
	}
	config.Defaults()
	if err := ValidateStruct(config); err != nil {
		return config, apperr.Wrap(err, apperr.ErrValidation, "invalid configuration")
	}
	return config, nil
}
