package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,required,notEmpty" envSeparator:","`
	PostgresURL    string        `env:"POSTGRES_URL,required,notEmpty"`
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIURL      string        `env:"OPENAI_API_URL" envDefault:"https://api.openai.com/v1"`
	GradingModel   string        `env:"GRADING_MODEL" envDefault:"gpt-4o-mini"`
	GradingTimeout time.Duration `env:"GRADING_TIMEOUT" envDefault:"20s"`
	BossHP         int           `env:"BOSS_HP" envDefault:"1000"`
	TurnTimeout    time.Duration `env:"TURN_TIMEOUT" envDefault:"0"`
	SkipMigrations bool          `env:"SKIP_MIGRATIONS" envDefault:"false"`
	Debug          bool          `env:"DEBUG" envDefault:"false"`
}

// Load reads a .env file when present, then parses the environment. Missing
// required variables fail fast at startup.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
