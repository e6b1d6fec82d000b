package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig   `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig `mapstructure:"database" validate:"required"`
	Reminders ReminderConfig `mapstructure:"reminders" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	// Driver is sqlite (URL is a file path or :memory:) or postgres (URL is a DSN).
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	URL    string `mapstructure:"url" validate:"required"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// ReminderConfig controls the background reminder poller.
type ReminderConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gte=1s"`
	Workers      int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	QueueSize    int           `mapstructure:"queue_size" validate:"gte=1"`
}
