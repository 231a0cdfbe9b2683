package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of the server configuration. Zero values fall
// back to the defaults below; a handful of fields can be overridden through
// environment variables for container deployments.
type fileConfig struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Postgres struct {
		// DSN empty selects the in-memory user store.
		DSN            string `yaml:"dsn"`
		MaxConns       int32  `yaml:"max_conns"`
		MigrateOnStart bool   `yaml:"migrate_on_start"`
	} `yaml:"postgres"`

	JWT struct {
		SigningMethod  string        `yaml:"signing_method"`
		PrivateKeyFile string        `yaml:"private_key_file"`
		PublicKeyFile  string        `yaml:"public_key_file"`
		Secret         string        `yaml:"secret"`
		Issuer         string        `yaml:"issuer"`
		AccessTTL      time.Duration `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Session struct {
		Prefix        string        `yaml:"prefix"`
		TTL           time.Duration `yaml:"ttl"`
		SingleSession *bool         `yaml:"single_session"`
	} `yaml:"session"`

	Audit struct {
		// File receives audit events as JSON lines; empty disables file audit.
		File string `yaml:"file"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	cfg.Listen = ":8080"
	cfg.LogLevel = "info"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Postgres.MigrateOnStart = true
	cfg.JWT.Issuer = "authgate"

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("AUTHGATE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("AUTHGATE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("AUTHGATE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AUTHGATE_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("AUTHGATE_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	return cfg, nil
}
