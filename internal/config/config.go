// internal/config/config.go
//
// Environment-driven configuration for the match-grid server and terminal client.
//
// Environment variables (all optional):
//   PORT            listen port (default 5175)
//   LOG_LEVEL       zerolog level (default info)
//   GRID_WIDTH      tiles per row (default 4)
//   GRID_HEIGHT     rows (default 4)
//   TIME_LIMIT      countdown in seconds (default 60)
//   THEME_FONT      font family for the browser client
//   THEME_HIDDEN    colour of face-down tiles (default darkslategray)
//   THEME_REVEALED  colour of face-up tiles (default gold)
//   THEME_MATCHED   colour of matched tiles (default green)
//   SESSION_SECRET  HMAC key for session tokens
//   SESSION_TTL     idle time before a session is evicted (default 30m)
//   DAILY_SALT      salt for the daily board seed
//   CLIENT_ORIGIN   allowed CORS origin (default http://localhost:5173)
//   TUI_LOG_FILE    log destination for the terminal client (default: discard)
//
// A .env file in the working directory is loaded first when present.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchgrid/internal/game"
)

// Config is the resolved process configuration.
type Config struct {
	Port          string
	LogLevel      string
	Game          game.Options
	SessionSecret string
	SessionTTL    time.Duration
	DailySalt     string
	ClientOrigin  string
	TUILogFile    string
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Game: game.Options{
			Width:     getInt("GRID_WIDTH", game.DefaultWidth),
			Height:    getInt("GRID_HEIGHT", game.DefaultHeight),
			TimeLimit: getInt("TIME_LIMIT", game.DefaultTimeLimit),
			Theme: map[string]string{
				"font":     getEnv("THEME_FONT", "Helvetica, sans-serif"),
				"hidden":   getEnv("THEME_HIDDEN", "darkslategray"),
				"revealed": getEnv("THEME_REVEALED", "gold"),
				"matched":  getEnv("THEME_MATCHED", "green"),
			},
		},
		SessionSecret: getEnv("SESSION_SECRET", "dev_secret_change_me"),
		SessionTTL:    getDuration("SESSION_TTL", 30*time.Minute),
		DailySalt:     getEnv("DAILY_SALT", "local_dev_salt"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		TUILogFile:    os.Getenv("TUI_LOG_FILE"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Err(err).Str("key", k).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Err(err).Str("key", k).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}
