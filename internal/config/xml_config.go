// Package config provides XML-based configuration management for the plan server.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/table-planner/backend/internal/storage"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"TablePlanner"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Planner configuration
	Planner PlannerConfig `xml:"Planner"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig selects where plans are kept
type StorageConfig struct {
	DataDirectory  string `xml:"DataDirectory"`
	Driver         string `xml:"Driver"`
	DatabasePath   string `xml:"DatabasePath"`
	RedisAddr      string `xml:"RedisAddr"`
	RedisPassword  string `xml:"RedisPassword"`
	RedisDB        int    `xml:"RedisDB"`
	RedisTLS       bool   `xml:"RedisTLS"`
	RedisKeyPrefix string `xml:"RedisKeyPrefix"`
}

// PlannerConfig contains editing and plan lifetime settings
type PlannerConfig struct {
	HistoryLimit           int    `xml:"HistoryLimit"`
	MaxOpenPlans           int    `xml:"MaxOpenPlans"`
	PlanTimeoutMinutes     int    `xml:"PlanTimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
	SaveTimeoutSeconds     int    `xml:"SaveTimeoutSeconds"`
	DefaultsFile           string `xml:"DefaultsFile"`
	PictureDirectory       string `xml:"PictureDirectory"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging    bool `xml:"EnableRequestLogging"`
	EnableCompression       bool `xml:"EnableCompression"`
	CompressionLevel        int  `xml:"CompressionLevel"`
	EnableMetrics           bool `xml:"EnableMetrics"`
	WebSocketMaxMessageSize int  `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "20M",
		},
		Storage: StorageConfig{
			DataDirectory:  "./data",
			Driver:         string(storage.DriverFilesystem),
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "",
		},
		Planner: PlannerConfig{
			HistoryLimit:           50,
			MaxOpenPlans:           32,
			PlanTimeoutMinutes:     30,
			CleanupIntervalMinutes: 5,
			SaveTimeoutSeconds:     5,
			DefaultsFile:           "./data/defaults.yaml",
			PictureDirectory:       "./data/pictures",
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging:    true,
			EnableCompression:       true,
			CompressionLevel:        5,
			EnableMetrics:           true,
			WebSocketMaxMessageSize: 64,
		},
	}
}

// LoadConfig loads configuration from XML file. A .env file next to it is
// loaded into the environment first; environment variables override the
// file.
func LoadConfig(configPath string) (*AppConfig, error) {
	configDir := filepath.Dir(configPath)
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		config = &AppConfig{}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	if err := config.validate(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(configDir)

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Table Planner Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		c.Storage.DatabasePath = path
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Storage.RedisAddr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		c.Storage.RedisPassword = pw
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			c.Storage.RedisDB = n
		}
	}

	if limit := os.Getenv("HISTORY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			c.Planner.HistoryLimit = n
		}
	}
	if pics := os.Getenv("PICTURE_DIR"); pics != "" {
		c.Planner.PictureDirectory = pics
	}
}

func (c *AppConfig) validate() error {
	switch storage.Driver(c.Storage.Driver) {
	case "", storage.DriverFilesystem, storage.DriverBolt, storage.DriverDuckDB, storage.DriverSQLite, storage.DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.DatabasePath)
	resolve(&c.Planner.DefaultsFile)
	resolve(&c.Planner.PictureDirectory)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetPlansDir returns the directory of the filesystem store and database files
func (c *AppConfig) GetPlansDir() string {
	return filepath.Join(c.Storage.DataDirectory, "plans")
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// StorageOptions returns the options for storage.Open.
func (c *AppConfig) StorageOptions() storage.Options {
	return storage.Options{
		Driver: storage.Driver(c.Storage.Driver),
		Dir:    c.GetPlansDir(),
		Path:   c.Storage.DatabasePath,
		Redis: storage.RedisOptions{
			Addr:      c.Storage.RedisAddr,
			Password:  c.Storage.RedisPassword,
			DB:        c.Storage.RedisDB,
			TLS:       c.Storage.RedisTLS,
			KeyPrefix: c.Storage.RedisKeyPrefix,
		},
	}
}

// PlanTimeout returns how long an idle plan stays in memory.
func (c *AppConfig) PlanTimeout() time.Duration {
	return time.Duration(c.Planner.PlanTimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often idle plans are swept.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Planner.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Planner.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.GetPlansDir(),
	}
	if c.Planner.PictureDirectory != "" {
		dirs = append(dirs, c.Planner.PictureDirectory)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
