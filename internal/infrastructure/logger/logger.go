// Package logger configures the process-wide zerolog logger: a console
// writer with RFC3339 timestamps, matching the teacher's setup. Session
// state transitions and fan-out consumer churn are logged at Info/Warn;
// frame decode failures are never logged, since that's the hot path.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup wires the global zerolog logger and applies level, falling back
// to Info for an empty or unrecognized value so a missing config.toml
// entry never silences startup output.
func Setup(level string) {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
