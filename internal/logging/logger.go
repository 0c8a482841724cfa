package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/config"
)

// NewLogger creates the structured root logger. Entries are also captured by
// the ring so the control surface can show recent activity.
func NewLogger(cfg *config.Config, ring *Ring) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "consoleback").
		Logger()

	if ring != nil {
		logger = logger.Hook(ring)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
