// Package config loads runtime settings from ./.env, an optional
// trainercard.yaml and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never deploy with it.
const DevJWTSecret = "dev-insecure-secret-change"

type Config struct {
	DBDSN            string        `mapstructure:"db_dsn"`
	DBAutoMigrate    bool          `mapstructure:"db_auto_migrate"`
	JWTSecret        string        `mapstructure:"jwt_secret"`
	HTTPAddr         string        `mapstructure:"http_addr"`
	UploadBase       string        `mapstructure:"upload_base"`
	MaxUploadMB      int64         `mapstructure:"max_upload_mb"`
	RecognizeTimeout time.Duration `mapstructure:"recognize_timeout"`

	// AdminPassword seeds an administrator account when set.
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`

	// RedisURL enables asynchronous recognition when set.
	RedisURL          string `mapstructure:"redis_url"`
	QueueName         string `mapstructure:"queue_name"`
	WorkerConcurrency int    `mapstructure:"worker_concurrency"`

	TesseractLang string `mapstructure:"tesseract_lang"`

	// TesseractWhitelist restricts the characters tesseract may emit.
	TesseractWhitelist string `mapstructure:"tesseract_whitelist"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// TesseractLanguages splits TesseractLang on '+', the way tesseract itself does.
func (c Config) TesseractLanguages() []string {
	var langs []string
	for _, l := range strings.Split(c.TesseractLang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func defaults(v *viper.Viper) {
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("jwt_secret", DevJWTSecret)
	v.SetDefault("http_addr", ":8081")
	v.SetDefault("upload_base", "uploads")
	v.SetDefault("max_upload_mb", 8)
	v.SetDefault("recognize_timeout", "60s")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("queue_name", "cards")
	v.SetDefault("worker_concurrency", 4)
	v.SetDefault("tesseract_lang", "eng")
	v.SetDefault("tesseract_whitelist", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// Load reads ./.env (variables already set win) and builds the Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(viper.New(), ".")
}

// FromViper fills v with defaults, the optional trainercard.yaml found in
// dir and the environment, then decodes it.
func FromViper(v *viper.Viper, dir string) (Config, error) {
	defaults(v)
	v.SetConfigName("trainercard")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.RecognizeTimeout <= 0 {
		return Config{}, fmt.Errorf("recognize_timeout must be positive, got %s", cfg.RecognizeTimeout)
	}
	return cfg, nil
}
