package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Corpus struct {
		// Source is "files" or "postgres"; empty picks postgres when a URL is set.
		Source string `yaml:"source"`
		Dir    string `yaml:"dir"`
		TTL    string `yaml:"ttl"`
	} `yaml:"corpus"`
	Game struct {
		IdleTimeout    string `yaml:"idleTimeout"`
		ReaperInterval string `yaml:"reaperInterval"`
		RoundWindow    string `yaml:"roundWindow"`
		Intermission   string `yaml:"intermission"`
	} `yaml:"game"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the zero config
// so the service can run on defaults and environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg.withEnv(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg.withEnv(), nil
}

// withEnv applies environment overrides the bot has always honored.
func (c Config) withEnv() Config {
	if dir := os.Getenv("FILE_PATH"); dir != "" {
		c.Corpus.Dir = dir
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Postgres.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
	return c
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
