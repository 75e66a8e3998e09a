package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shortcast/shortcast/fields"
)

var logrusLogger = logrus.New()

func configureLogger(cfg fields.Config) {
	logrusLogger.Out = os.Stderr
	if cfg.IsDebug {
		logrusLogger.SetLevel(logrus.DebugLevel)
		logrusLogger.SetReportCaller(true)
	} else {
		logrusLogger.SetLevel(logrus.InfoLevel)
		logrusLogger.SetReportCaller(false)
	}
	logrusLogger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})
}
