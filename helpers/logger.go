package helpers

import (
	"fmt"
	"os"
	"time"

	"sjsage522/listingscraper/logger"
)

// LoggerInterface defines the interface for region failure logging
type LoggerInterface interface {
	LogError(region string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger appends region failures to an error file and forwards info to the structured logger
type Logger struct {
	errorFile string
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error to a file with region name and timestamp
func (l *Logger) LogError(region string, err error) {
	logger.ForRegion(region).WithError(err).Error().Msg("Region failed")

	if l.errorFile == "" {
		return
	}

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Warn("failed to open error log %s: %v", l.errorFile, fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, region, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}
