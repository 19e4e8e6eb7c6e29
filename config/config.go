package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"nudge"`
	Password string `envconfig:"PASS" default:"nudge"`
	DBName   string `envconfig:"NAME" default:"nudge_engine"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// URL is the connection string golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN is the lib/pq keyword form.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

type SupabaseConfig struct {
	URL   string `envconfig:"URL"`
	Key   string `envconfig:"KEY"`
	Table string `envconfig:"TABLE" default:"engine_documents"`
}

type StorageConfig struct {
	Driver     string `envconfig:"STORAGE_DRIVER" default:"memory"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"nudge.db"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET"`
}

type EngineConfig struct {
	SamplingInterval  time.Duration `envconfig:"SAMPLING_INTERVAL" default:"30s"`
	AnalysisInterval  time.Duration `envconfig:"ANALYSIS_INTERVAL" default:"5m"`
	ActivityRetention time.Duration `envconfig:"ACTIVITY_RETENTION" default:"168h"`
	SyntheticActivity bool          `envconfig:"SYNTHETIC_ACTIVITY" default:"false"`
	DefaultPersona    string        `envconfig:"DEFAULT_PERSONA" default:"drill_sergeant"`
	WorkspaceIdle     time.Duration `envconfig:"WORKSPACE_IDLE_TIMEOUT" default:"2h"`
}

type Config struct {
	Env      string         `envconfig:"ENV" default:"prod"`
	Server   ServerConfig   `ignored:"true"`
	DB       DatabaseConfig `ignored:"true"`
	Redis    RedisConfig    `ignored:"true"`
	Supabase SupabaseConfig `ignored:"true"`
	Storage  StorageConfig  `ignored:"true"`
	Auth     AuthConfig     `ignored:"true"`
	Engine   EngineConfig   `ignored:"true"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	var cfg Config
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"", &cfg},
		{"", &cfg.Server},
		{"DB", &cfg.DB},
		{"REDIS", &cfg.Redis},
		{"SUPABASE", &cfg.Supabase},
		{"", &cfg.Storage},
		{"", &cfg.Auth},
		{"", &cfg.Engine},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	return &cfg, nil
}
