package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration for the games service.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"gsl-games"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Storage    Storage
	Redis      Redis
	Game       Game
	Dictionary Dictionary
}

// Storage selects and configures the durable profile-store driver.
type Storage struct {
	// Driver is "file" (JSON document on disk) or "postgres".
	Driver       string `env:"STORAGE_DRIVER" envDefault:"file"`
	GameDataFile string `env:"GAME_DATA_FILE" envDefault:"data/game_data.json"`

	Postgres Postgres
}

// Postgres captures connection info for the SQL storage driver.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds the optional leaderboard cache configuration.
// An empty Addr disables the cache.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Game groups gameplay defaults.
type Game struct {
	MultiplayerQuestions int `env:"MULTIPLAYER_QUESTION_COUNT" envDefault:"5"`
	SoloQuestions        int `env:"SOLO_QUESTION_COUNT" envDefault:"3"`
	RoomCapacity         int `env:"ROOM_CAPACITY" envDefault:"2"`
	LeaderboardTopN      int `env:"LEADERBOARD_TOP" envDefault:"50"`
}

// Dictionary points at the sign dictionary data on disk.
type Dictionary struct {
	File     string `env:"DICTIONARY_FILE" envDefault:"data/dictionary.json"`
	MediaDir string `env:"MEDIA_DIR" envDefault:"data/media"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage.Driver != "file" && cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

// DSN builds the pgx connection string for the postgres driver.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
