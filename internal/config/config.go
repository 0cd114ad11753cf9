package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every tunable of the game server. All values come from the
// environment so a deployment can reshape a room without a rebuild.
type Config struct {
	HTTPAddr  string
	PublicDir string
	LogLevel  string

	// Room shape
	RoomCapacity     int
	EliminationScore int
	TargetFactor     float64

	// Pacing
	RoundDuration   time.Duration
	InterRoundDelay time.Duration
	StartCountdown  time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":3000"),
		PublicDir:        getenv("PUBLIC_DIR", "public"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		RoomCapacity:     getenvInt("ROOM_CAPACITY", 4),
		EliminationScore: getenvInt("ELIMINATION_SCORE", 10),
		TargetFactor:     getenvFloat("TARGET_FACTOR", 0.8),
		RoundDuration:    getenvDur("ROUND_DURATION", 30*time.Second),
		InterRoundDelay:  getenvDur("INTER_ROUND_DELAY", 5*time.Second),
		StartCountdown:   getenvDur("START_COUNTDOWN", 6*time.Second),
	}
}
