package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string   `mapstructure:"http_address"`
	RPCAddress     string   `mapstructure:"rpc_address"`
	MetricsAddress string   `mapstructure:"metrics_address"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GameConfig tunes room and round behaviour.
type GameConfig struct {
	ContentDir      string        `mapstructure:"content_dir"`
	DefaultContent  string        `mapstructure:"default_content"`
	DefaultScoring  string        `mapstructure:"default_scoring"`
	CodeAttempts    int           `mapstructure:"code_attempts"`
	EmptyRoomGrace  time.Duration `mapstructure:"empty_room_grace"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	MaxNameLength   int           `mapstructure:"max_name_length"`
	MaxAnswerLength int           `mapstructure:"max_answer_length"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the key/value connection string understood by both lib/pq and pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":9090")
	v.SetDefault("server.metrics_address", "")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("game.content_dir", "content/sets")
	v.SetDefault("game.default_content", "sample")
	v.SetDefault("game.default_scoring", "closest")
	v.SetDefault("game.code_attempts", 64)
	v.SetDefault("game.empty_room_grace", 30*time.Second)
	v.SetDefault("game.sweep_interval", 10*time.Second)
	v.SetDefault("game.max_name_length", 32)
	v.SetDefault("game.max_answer_length", 64)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "gorm")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "quizroom")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "quiz.rooms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path (optional) and applies QUIZ_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	switch c.Game.DefaultScoring {
	case "closest", "buzzer":
	default:
		return fmt.Errorf("game.default_scoring: unknown policy %q", c.Game.DefaultScoring)
	}
	if c.Game.CodeAttempts <= 0 {
		return fmt.Errorf("game.code_attempts must be positive, got %d", c.Game.CodeAttempts)
	}
	if c.Game.SweepInterval <= 0 {
		return fmt.Errorf("game.sweep_interval must be positive, got %s", c.Game.SweepInterval)
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "gorm", "pq":
		default:
			return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
		}
	}
	return nil
}
