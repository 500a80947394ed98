package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"growthbot/internal/config"
)

// Setup configures the package-level logger from config. Returns an error
// only when the log file cannot be opened; callers treat that as fatal.
func Setup(cfg config.LoggingConfig) error {
	var w io.Writer = os.Stdout
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", cfg.File, err)
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	log.SetOutput(w)
	log.SetReportTimestamp(true)
	log.SetTimeFormat("2006-01-02 15:04:05")
	switch cfg.Level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	return nil
}
