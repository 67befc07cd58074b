package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	CMS         CMSConfig
	Content     ContentConfig
	BuildDrafts bool   `env:"BUILD_DRAFTS" envDefault:"false"`
	FrontMatter string `env:"FRONTMATTER" envDefault:"yaml" validate:"oneof=yaml toml json"`
	Server      ServerConfig
	Sync        SyncConfig
	Hugo        HugoConfig
	Log         LogConfig
}

type CMSConfig struct {
	URL      string        `env:"CMS_URL" envDefault:"http://localhost:8055" validate:"required,url"`
	Email    string        `env:"CMS_EMAIL" validate:"required_with=Password"`
	Password string        `env:"CMS_PASSWORD" validate:"required_with=Email"`
	Timeout  time.Duration `env:"CMS_TIMEOUT" envDefault:"0s"`
}

// ContentConfig controls where and how items land in the content tree.
type ContentConfig struct {
	Path  string `env:"CONTENT_PATH" envDefault:"content" validate:"required"`
	Home  string `env:"CONTENT_HOME" envDefault:"home" validate:"required"`
	Index string `env:"CONTENT_INDEX" envDefault:"index" validate:"required"`
}

// ServerConfig is the webhook listener.
type ServerConfig struct {
	Host string `env:"BUILD_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"BUILD_PORT" envDefault:"8060" validate:"min=1,max=65535"`
}

type SyncConfig struct {
	Concurrency int `env:"SYNC_CONCURRENCY" envDefault:"8" validate:"min=1"`
}

// HugoConfig enables a site build after every successful sync.
type HugoConfig struct {
	Build  bool   `env:"HUGO_BUILD" envDefault:"false"`
	Source string `env:"HUGO_SOURCE" envDefault:"."`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.CMS.URL = strings.TrimRight(strings.TrimSpace(c.CMS.URL), "/")
	c.Content.Home = strings.ToLower(strings.TrimSpace(c.Content.Home))
	c.Content.Index = strings.ToLower(strings.TrimSpace(c.Content.Index))
	c.FrontMatter = strings.ToLower(strings.TrimSpace(c.FrontMatter))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Addr is the webhook listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
