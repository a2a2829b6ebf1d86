package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingJWTSecret = errors.New("auth.jwt_secret must be set outside local env")

var validate = validator.New()

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env         string      `mapstructure:"env" validate:"required"`
	Port        string      `mapstructure:"port" validate:"required,numeric"`
	Timezone    string      `mapstructure:"timezone" validate:"required"` // IANA name used for calendar days, or "Local"
	Store       Store       `mapstructure:"store"`
	Redis       Redis       `mapstructure:"redis"`
	Auth        Auth        `mapstructure:"auth"`
	CORS        CORS        `mapstructure:"cors"`
	Leaderboard Leaderboard `mapstructure:"leaderboard"`
}

// Store selects the backend standing in for browser local storage.
type Store struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory sqlite postgres mysql redis"`
	Path   string `mapstructure:"path"` // sqlite file
	URL    string `mapstructure:"url" validate:"required_if=Driver postgres,required_if=Driver mysql"`
}

type Redis struct {
	Addr     string `mapstructure:"addr" validate:"required_if=Driver redis"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`
	Prefix   string `mapstructure:"prefix"`
	Driver   string `mapstructure:"-"`
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Leaderboard struct {
	Size int `mapstructure:"size" validate:"gt=0,lte=100"`
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads .env, an optional config/config.yaml, and environment variables.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("timezone", "Local")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "./progress.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "padhai:")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("leaderboard.size", 10)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("store.url", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	c.Redis.Driver = c.Store.Driver
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		if c.Env != "local" {
			return ErrMissingJWTSecret
		}
		c.Auth.JWTSecret = "padhai-local-signing-key"
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
