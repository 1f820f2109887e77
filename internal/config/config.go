package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Auth     Auth     `mapstructure:"auth"`
	Upload   Upload   `mapstructure:"upload"`
	Workers  Workers  `mapstructure:"workers"`
	Log      Log      `mapstructure:"log"`
	Retry    Retry    `mapstructure:"retry"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	Host     string `mapstructure:"host"`
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Addr returns the host:port address to listen on.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.HTTPPort)
}

// Database holds database master and slave configuration.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Auth holds the static bearer token each request must carry.
type Auth struct {
	BearerToken string `mapstructure:"bearer_token"`
}

// Upload holds the upload policy: size ceiling, dimension ceiling and the
// MIME allow-list.
type Upload struct {
	MaxFileSize       int      `mapstructure:"max_file_size"`       // bytes
	MaxImageDimension int      `mapstructure:"max_image_dimension"` // pixels
	AllowedMimeTypes  []string `mapstructure:"allowed_mime_types"`
}

// Workers holds worker pool sizing for the image pipeline.
type Workers struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// Log holds process log configuration. The file feeds the /logs endpoint.
type Log struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Retry defines the retry policy applied to the startup database ping.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"auth.bearer_token":    "BEARER_TOKEN",
		"server.host":          "HOST",
		"server.http_port":     "PORT",
		"upload.max_file_size": "MAX_FILE_SIZE",
		"log.file":             "LOG_FILE",
		"log.level":            "LOG_LEVEL",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.http_port", "8080")
	viper.SetDefault("upload.max_file_size", 10*1024*1024)
	viper.SetDefault("upload.max_image_dimension", 10000)
	viper.SetDefault("upload.allowed_mime_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp", "image/tiff",
	})
	viper.SetDefault("workers.pool_size", 4)
	viper.SetDefault("workers.queue_size", 64)
	viper.SetDefault("log.file", "logs/app.log")
	viper.SetDefault("log.level", "info")
}

// MustLoad loads the configuration from config/config.yml, with environment
// variables (optionally from a local .env file) taking precedence.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad() *Config {
	// A missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
