// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Host is the fixed loopback address the RPC listener binds. The plugin
// server is always colocated with the orchestrator that spawns it and is
// never exposed beyond the local machine.
const Host = "127.0.0.1"

// Config holds the entire plugin server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Callback CallbackConfig `mapstructure:"callback" yaml:"callback"`
}

// ServerConfig tunes the RPC listener and its worker bounds.
type ServerConfig struct {
	// Port the RPC listener binds on the loopback host.
	Port int `mapstructure:"port" yaml:"port"`
	// Threads bounds concurrent scan execution and per-connection stream
	// concurrency.
	Threads int `mapstructure:"threads" yaml:"threads"`
	// ShutdownGrace is how long in-flight calls may keep running after a
	// termination signal before the listener is closed on them.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" yaml:"shutdown_grace"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// OutputDir is the directory execution logs are written to.
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// NetworkConfig tunes the outbound HTTP client handed to every detector.
type NetworkConfig struct {
	// Timeout bounds each complete outbound HTTP call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// TrustAllCerts disables TLS certificate verification on outbound
	// HTTPS traffic. Scan targets routinely present self-signed
	// certificates, so this defaults to true.
	TrustAllCerts bool `mapstructure:"trust_all_certs" yaml:"trust_all_certs"`
	// LogID tags every outbound HTTP call so its log lines can be
	// correlated with the orchestrator's.
	LogID string `mapstructure:"log_id" yaml:"log_id"`
}

// CallbackConfig locates the out-of-band callback server used by payload
// generation to confirm blind exploitation.
type CallbackConfig struct {
	Address    string `mapstructure:"address" yaml:"address"`
	Port       int    `mapstructure:"port" yaml:"port"`
	PollingURI string `mapstructure:"polling_uri" yaml:"polling_uri"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Server --
	v.SetDefault("server.port", 34567)
	v.SetDefault("server.threads", 10)
	v.SetDefault("server.shutdown_grace", 3*time.Second)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_dir", "/tmp")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Network --
	v.SetDefault("network.timeout", 10*time.Second)
	v.SetDefault("network.trust_all_certs", true)
	v.SetDefault("network.log_id", "")

	// -- Callback --
	v.SetDefault("callback.address", "127.0.0.1")
	v.SetDefault("callback.port", 8881)
	v.SetDefault("callback.polling_uri", "http://127.0.0.1:8880")
}

// NewDefaultConfig returns a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Unmarshaling pure defaults cannot fail at runtime.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that has flags, files and environment variables already bound.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Server.Threads <= 0 {
		return fmt.Errorf("server.threads must be a positive integer")
	}
	if c.Server.ShutdownGrace < 0 {
		return fmt.Errorf("server.shutdown_grace must not be negative")
	}
	if c.Network.Timeout <= 0 {
		return fmt.Errorf("network.timeout must be a positive duration")
	}
	if c.Callback.Port <= 0 || c.Callback.Port > 65535 {
		return fmt.Errorf("callback.port must be in (0, 65535], got %d", c.Callback.Port)
	}
	return nil
}
