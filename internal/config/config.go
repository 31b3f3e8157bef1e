// Package config provides Viper-based configuration loading for grue.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/grue/internal/game/engine"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. The CLI keeps logs off stdout.
	Output string `mapstructure:"output"`
}

// ContentConfig locates the world content.
type ContentConfig struct {
	// ZonesDir is the directory holding zone YAML files.
	ZonesDir string `mapstructure:"zones_dir"`
	// Scripts enables the per-zone Lua hooks.
	Scripts bool `mapstructure:"scripts"`
}

// EngineConfig holds the game rules plus the flavor seed.
type EngineConfig struct {
	engine.Config `mapstructure:",squash"`
	// Seed makes flavor text reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// StorageConfig selects where session state is persisted.
type StorageConfig struct {
	// Backend is one of memory, bolt, redis or postgres.
	Backend string `mapstructure:"backend"`
	// BoltPath is the database file of the bolt backend.
	BoltPath string `mapstructure:"bolt_path"`
	// SessionTTL expires idle sessions in the redis backend; 0 keeps them forever.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Width is the column at which narrative output is wrapped; 0 disables wrapping.
	Width int `mapstructure:"width"`
	// Prompt is written before each command is read; empty means "> ".
	Prompt string `mapstructure:"prompt"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
}

// Validate checks all configuration invariants. Backend connection settings
// are only checked for the selected backend.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	add(validateLogging(c.Logging))
	add(validateContent(c.Content))
	add(validateEngine(c.Engine))
	add(validateStorage(c.Storage))
	switch c.Storage.Backend {
	case BackendRedis:
		add(validateRedis(c.Redis))
	case BackendPostgres:
		add(validateDatabase(c.Database))
	}
	add(validateTelnet(c.Telnet))

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.ZonesDir == "" {
		return errors.New("content.zones_dir must not be empty")
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.MoodThreshold < 0 {
		errs = append(errs, fmt.Sprintf("engine.mood_threshold must be >= 0, got %d", e.MoodThreshold))
	}
	if e.Light.Drain < 0 || e.Light.CursedDrain < 0 {
		errs = append(errs, "engine.light drain rates must not be negative")
	}
	if e.Inventory.MaxCarry < 0 {
		errs = append(errs, fmt.Sprintf("engine.inventory.max_carry must be >= 0, got %d", e.Inventory.MaxCarry))
	}
	if e.Combat.BareHandDamage < 0 || e.Combat.CounterStrength < 0 {
		errs = append(errs, "engine.combat values must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	case BackendBolt:
		if s.BoltPath == "" {
			return errors.New("storage.bolt_path must not be empty for the bolt backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of [memory, bolt, redis, postgres], got %q", s.Backend)
	}
	if s.SessionTTL < 0 {
		return errors.New("storage.session_ttl must not be negative")
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.Width < 0 {
		errs = append(errs, "telnet.width must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with GRUE_ prefix
	v.SetEnvPrefix("GRUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("content.zones_dir", "content/zones")
	v.SetDefault("content.scripts", true)

	def := engine.DefaultConfig()
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.mood_threshold", def.MoodThreshold)
	v.SetDefault("engine.curse_flag", def.CurseFlag)
	v.SetDefault("engine.light.source_id", def.Light.SourceID)
	v.SetDefault("engine.light.on_flag", def.Light.OnFlag)
	v.SetDefault("engine.light.battery_flag", def.Light.BatteryFlag)
	v.SetDefault("engine.light.curse_flag", def.Light.CurseFlag)
	v.SetDefault("engine.light.drain", def.Light.Drain)
	v.SetDefault("engine.light.cursed_drain", def.Light.CursedDrain)
	v.SetDefault("engine.light.warnings", def.Light.Warnings)
	v.SetDefault("engine.inventory.max_carry", def.Inventory.MaxCarry)
	v.SetDefault("engine.inventory.scoring_container", def.Inventory.ScoringContainer)
	v.SetDefault("engine.inventory.win_threshold", def.Inventory.WinThreshold)
	v.SetDefault("engine.inventory.win_flag", def.Inventory.WinFlag)
	v.SetDefault("engine.combat.bare_hand_damage", def.Combat.BareHandDamage)
	v.SetDefault("engine.combat.counter_strength", def.Combat.CounterStrength)

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.bolt_path", "grue.db")
	v.SetDefault("storage.session_ttl", "0s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "grue:session:")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "grue")
	v.SetDefault("database.password", "grue")
	v.SetDefault("database.name", "grue")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.width", 78)
	v.SetDefault("telnet.prompt", "> ")
}
