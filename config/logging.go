package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// Log is the application logger. It writes to LogWriter once InitLogging ran.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "research-api.log")
}

// InitLogging prepares the log file and configures the standard logger and
// Log to write to it as well as stdout.
func InitLogging() (*os.File, io.Writer) {
	logPath := filepath.Dir(LogFilePath())
	if err := os.MkdirAll(logPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file: %v", err)
		LogWriter = os.Stdout
	} else {
		LogWriter = io.MultiWriter(os.Stdout, logFile)
	}
	log.SetOutput(LogWriter)
	Log = newLogger(LogWriter, AppConfig.Environment)
	if err != nil {
		return nil, LogWriter
	}
	return logFile, LogWriter
}

func newLogger(w io.Writer, env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		// Pretty console output for development
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: w != os.Stdout}).
			With().
			Timestamp().
			Caller().
			Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
