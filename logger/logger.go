package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the shared project logger, creating it on first use.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetOutput(os.Stderr)
		projectLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
		if os.Getenv("RGLR_DEBUG") != "" {
			projectLogger.SetLevel(logrus.DebugLevel)
		}
	})
	return projectLogger
}
