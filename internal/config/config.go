package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"musicstats/internal/library"
)

// envPrefix namespaces environment overrides, e.g. MUSICSTATS_TOP=10.
const envPrefix = "MUSICSTATS_"

// Config contains the program configuration
type Config struct {
	LibraryPath   string `yaml:"library_path"`
	Since         string `yaml:"since"`
	Until         string `yaml:"until"`
	Top           int    `yaml:"top"`
	Format        string `yaml:"format"`
	EnrichTags    bool   `yaml:"enrich_tags"`
	Verbose       bool   `yaml:"verbose"`
	ListenAddr    string `yaml:"listen_addr"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LibraryPath:   library.DefaultPath,
		Top:           18,
		Format:        "text",
		ListenAddr:    ":8080",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// LoadEnv loads variables from .env files into the process environment.
// Variables that are already set win. Missing files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// FromEnv applies MUSICSTATS_* environment variables on top of cfg.
func FromEnv(cfg Config) (Config, error) {
	if v, ok := lookupEnv("LIBRARY_PATH"); ok {
		cfg.LibraryPath = v
	}
	if v, ok := lookupEnv("SINCE"); ok {
		cfg.Since = v
	}
	if v, ok := lookupEnv("UNTIL"); ok {
		cfg.Until = v
	}
	if v, ok := lookupEnv("FORMAT"); ok {
		cfg.Format = v
	}
	if v, ok := lookupEnv("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"TOP", &cfg.Top},
		{"LOG_MAX_SIZE_MB", &cfg.LogMaxSizeMB},
		{"LOG_MAX_BACKUPS", &cfg.LogMaxBackups},
	}
	for _, it := range ints {
		v, ok := lookupEnv(it.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s%s value: %s", envPrefix, it.name, v)
		}
		*it.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"ENRICH_TAGS", &cfg.EnrichTags},
		{"VERBOSE", &cfg.Verbose},
	}
	for _, it := range bools {
		v, ok := lookupEnv(it.name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s%s value: %s", envPrefix, it.name, v)
		}
		*it.dst = b
	}

	return cfg, nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// LoadConfigFile loads configuration from a YAML file on top of defaults and
// environment overrides. If path is empty, searches standard locations.
// Returns the environment-adjusted defaults if no file is found.
func LoadConfigFile(path string) (Config, error) {
	cfg, err := FromEnv(DefaultConfig())
	if err != nil {
		return cfg, err
	}

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LibraryPath = ExpandHome(cfg.LibraryPath)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./musicstats.yaml",
		"./musicstats.yml",
		filepath.Join(home, ".config", "musicstats", "config.yaml"),
		filepath.Join(home, ".config", "musicstats", "config.yml"),
		filepath.Join(home, ".musicstats.yaml"),
		filepath.Join(home, ".musicstats.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "musicstats", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "musicstats", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LibraryPath == "" {
		return fmt.Errorf("library path cannot be empty")
	}

	if c.Top < 0 {
		return fmt.Errorf("top must be zero (unlimited) or positive, got %d", c.Top)
	}

	validFormats := []string{"text", "json"}
	isValid := false
	for _, format := range validFormats {
		if c.Format == format {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("unsupported output format '%s', valid formats: %v", c.Format, validFormats)
	}

	if c.Until != "" && c.Since == "" {
		return fmt.Errorf("until requires since to be set")
	}
	if c.Since != "" {
		if _, err := time.Parse("2006-01-02", c.Since); err != nil {
			return fmt.Errorf("since must be YYYY-MM-DD, got %q", c.Since)
		}
	}
	if c.Until != "" {
		if _, err := time.Parse("2006-01-02", c.Until); err != nil {
			return fmt.Errorf("until must be YYYY-MM-DD, got %q", c.Until)
		}
	}

	if c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return fmt.Errorf("invalid listen_addr %q: %w", c.ListenAddr, err)
		}
	}

	if c.LogMaxSizeMB < 1 {
		return fmt.Errorf("log_max_size_mb must be at least 1, got %d", c.LogMaxSizeMB)
	}
	if c.LogMaxBackups < 0 {
		return fmt.Errorf("log_max_backups cannot be negative, got %d", c.LogMaxBackups)
	}

	return nil
}
