package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// DefaultPath is read when no --config flag is given. A missing file is not an error.
const DefaultPath = "config.toml"

var conf = defaults()

// Config 全ての設定を格納
type Config struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	Database struct {
		URL   string `toml:"url"`
		Mongo string `toml:"mongo_database"`
	} `toml:"database"`
	WordsAPI struct {
		URL     string   `toml:"url"`
		Key     string   `toml:"key"`
		Host    string   `toml:"host"`
		Timeout Duration `toml:"timeout"`
	} `toml:"words_api"`
	SyllableCache struct {
		Dir string   `toml:"dir"`
		TTL Duration `toml:"ttl"`
	} `toml:"syllable_cache"`
}

// Duration lets TOML carry values like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaults() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Database.Mongo = "findpangram"
	c.WordsAPI.URL = "https://wordsapiv1.p.rapidapi.com"
	c.WordsAPI.Timeout.Duration = 10 * time.Second
	c.SyllableCache.TTL.Duration = 24 * time.Hour
	return c
}

// Load builds the configuration from defaults, the TOML file at path, a .env
// file and the process environment, in that order, and installs it as the
// value returned by GetConf.
func Load(path string, logger *zap.Logger) (*Config, error) {
	c := defaults()

	if path == "" {
		path = DefaultPath
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logger.Debug("No config file found", zap.String("path", path))
	}

	// .env ファイルが存在すれば読み込む（存在しなくても環境変数から読める）
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, reading from environment variables")
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	conf = c
	return c, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *Duration, key string) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		dst.Duration = d
		return nil
	}

	setString(&c.Server.Addr, "LISTEN_ADDR")
	// DATABASE_URL beats MONGO_URI; either beats the file
	setString(&c.Database.URL, "MONGO_URI")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Mongo, "MONGO_DATABASE")
	setString(&c.WordsAPI.URL, "WORDS_API_URL")
	setString(&c.WordsAPI.Key, "WORDS_API_KEY")
	setString(&c.WordsAPI.Host, "WORDS_API_HOST")
	setString(&c.SyllableCache.Dir, "SYLLABLE_CACHE_DIR")

	if err := setDuration(&c.WordsAPI.Timeout, "WORDS_API_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.SyllableCache.TTL, "SYLLABLE_CACHE_TTL")
}

// Validate reports the first bad setting the syllable lookup needs.
func (c *Config) Validate() error {
	if c.WordsAPI.URL == "" {
		return errors.New("WORDS_API_URL is required")
	}
	if c.WordsAPI.Timeout.Duration <= 0 {
		return errors.New("words API timeout must be positive")
	}
	// ledis expiry is whole seconds; 0 disables it
	if ttl := c.SyllableCache.TTL.Duration; ttl < 0 || (ttl > 0 && ttl < time.Second) {
		return fmt.Errorf("SYLLABLE_CACHE_TTL must be 0 or at least 1s, got %s", ttl)
	}
	return nil
}

// RequireDatabase fails when no connection string was configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// GetConf is return config
func GetConf() *Config {
	return conf
}
