package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "number-royale/internal/api/http"
	"number-royale/internal/api/ws"
	"number-royale/internal/config"
	"number-royale/internal/room"
	"number-royale/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	mem := store.NewMemoryStore()
	rooms := room.NewManager(mem, cfg, clockwork.NewRealClock())
	hub := ws.NewHub(rooms)
	r := httpapi.SetupRouter(hub, cfg)

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Int("capacity", cfg.RoomCapacity).
		Dur("round_duration", cfg.RoundDuration).
		Msg("listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}
