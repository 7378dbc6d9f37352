package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration. Values come from an optional YAML
// file and can each be overridden by environment variables, so a bare
// `blumn` with no config file still starts with sensible defaults.
type Config struct {
	Port        string `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	WebDir      string `yaml:"web_dir"`
	AdminUser   string `yaml:"admin_user"`
	AdminPass   string `yaml:"admin_pass"`
	AuthEnabled bool   `yaml:"auth_enabled"`

	// OverdueCron is the cron schedule for the daily overdue-care check.
	OverdueCron string `yaml:"overdue_cron"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        "9090",
		DBPath:      "blumn.db",
		WebDir:      "./web",
		AdminUser:   "admin",
		AdminPass:   "",
		AuthEnabled: true,
		OverdueCron: "0 8 * * *",
	}
}

// Load reads the YAML file at path (when it exists), then applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// First run: write the defaults so the user has a file to edit.
			writeDefault(path, cfg)
		default:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.WebDir = getEnv("WEB_DIR", c.WebDir)
	c.AdminUser = getEnv("ADMIN_USER", c.AdminUser)
	c.AdminPass = getEnv("ADMIN_PASS", c.AdminPass)
	c.OverdueCron = getEnv("OVERDUE_CRON", c.OverdueCron)
	if v, ok := os.LookupEnv("AUTH_ENABLED"); ok {
		c.AuthEnabled = v == "true"
	}
}

func (c *Config) normalize() {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.WebDir == "" {
		c.WebDir = def.WebDir
	}
	if c.AdminUser == "" {
		c.AdminUser = def.AdminUser
	}
	if c.OverdueCron == "" {
		c.OverdueCron = def.OverdueCron
	}
}

// writeDefault saves the default config for the user to edit later. A
// failure here is not fatal; the server runs on defaults either way.
func writeDefault(path string, cfg Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("⚠️  Could not write default config %s: %v", path, err)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
