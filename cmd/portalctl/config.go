package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-portal/components/portal"
)

const (
	envAddr        = "PORTAL_ADDR"
	envDatabase    = "PORTAL_DATABASE"
	envAutoRefresh = "PORTAL_AUTO_REFRESH"
)

type serverConfig struct {
	Addr         string               `yaml:"addr"`
	Database     string               `yaml:"database"`
	BasePath     string               `yaml:"base_path"`
	Title        string               `yaml:"title"`
	Manifest     string               `yaml:"manifest"`
	AcademicYear *portal.AcademicYear `yaml:"academic_year"`
	AutoRefresh  time.Duration        `yaml:"auto_refresh"`
	Debug        bool                 `yaml:"debug"`
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Addr:     ":8069",
		Database: "portal.db",
		BasePath: "/portal",
		Title:    "Tableau de bord",
	}
}

// loadServerConfig reads path (optional) over the defaults, then applies
// environment overrides. envFile is loaded first when it exists.
func loadServerConfig(path, envFile string) (serverConfig, error) {
	cfg := defaultServerConfig()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("portalctl: load env file %s: %w", envFile, err)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return cfg, fmt.Errorf("portalctl: read config %s: %w", path, err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("portalctl: decode config %s: %w", path, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(envAddr)); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(envDatabase)); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(os.Getenv(envAutoRefresh)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			secs, convErr := strconv.Atoi(v)
			if convErr != nil {
				return cfg, fmt.Errorf("portalctl: %s: %w", envAutoRefresh, err)
			}
			d = time.Duration(secs) * time.Second
		}
		cfg.AutoRefresh = d
	}
	return cfg, nil
}
