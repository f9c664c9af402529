// Package logger sets up the global zerolog logger shared by the binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init initializes the global logger from LOG_LEVEL and LOG_FILE.
func Init() {
	InitWithLevel(os.Getenv("LOG_LEVEL"))
}

// InitWithLevel initializes the global logger at the named level, falling
// back to info when the name is empty or unknown. LOG_FILE, when set, also
// receives every line.
func InitWithLevel(levelName string) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 24
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	level := ParseLevel(levelName)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: milliTimeFormat,
		NoColor:    !isDevelopmentMode(),
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			output = io.MultiWriter(output, f)
		}
	}

	log.Logger = log.Output(output).With().Caller().Logger()

	log.Debug().
		Str("level", level.String()).
		Bool("dev", isDevelopmentMode()).
		Msg("Logger initialized")
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func isDevelopmentMode() bool {
	return os.Getenv("DEV") == "true" || os.Getenv("DEV_MODE") == "true"
}

// ForGame returns a logger that tags every line with the game ID.
func ForGame(gameID string) zerolog.Logger {
	return log.Logger.With().Str("game", gameID).Logger()
}
