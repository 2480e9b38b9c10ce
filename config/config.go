package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwrk-planet/session-service/internal/session"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // session-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Session struct {
	MaxRooms      int    `yaml:"maxRooms"`
	HistoryCap    int    `yaml:"historyCap"`
	MaxMessageLen int    `yaml:"maxMessageLen"`
	GracePeriod   string `yaml:"gracePeriod"`  // e.g. "2500ms"
	ExpireAfter   string `yaml:"expireAfter"`  // e.g. "2h"
	SweepEvery    string `yaml:"sweepEvery"`   // e.g. "60s"
	CreateLimit   int    `yaml:"createLimit"`  // creates per window per address
	CreateWindow  string `yaml:"createWindow"` // e.g. "60s"
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Session Session `yaml:"session"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "session-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

// SessionSettings переводит yaml-значения в настройки менеджера;
// нули заполняются дефолтами на стороне session.
func (c *Config) SessionSettings() session.Settings {
	s := c.Session
	return session.Settings{
		MaxRooms:      s.MaxRooms,
		HistoryCap:    s.HistoryCap,
		MaxMessageLen: s.MaxMessageLen,
		GracePeriod:   parseDurationOr(2500*time.Millisecond, s.GracePeriod),
		ExpireAfter:   parseDurationOr(2*time.Hour, s.ExpireAfter),
		SweepEvery:    parseDurationOr(time.Minute, s.SweepEvery),
		CreateLimit:   s.CreateLimit,
		CreateWindow:  parseDurationOr(time.Minute, s.CreateWindow),
	}
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
