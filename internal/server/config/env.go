package config

import (
	"errors"
	"io/fs"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kavyaresto/kavyaserve/internal/flagx"
)

// loadEnvFile seeds the process environment from a dotenv file. The file
// given with -e/-env-file must exist; the implicit ./.env is optional.
// Variables already present in the environment are never overwritten.
func loadEnvFile() {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}
}

// parseEnv overlays environment variables on top of cfg. Unset variables
// keep whatever value cfg already holds.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
