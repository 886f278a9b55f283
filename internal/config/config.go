package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bellmemo/bell-memo/internal/constants"
	interrors "github.com/bellmemo/bell-memo/internal/errors"
)

const (
	appName        = "bell-memo"
	configFileName = "config.json"
	dbFileName     = "memo.db"

	EnvDatabasePath = "BELLMEMO_DATABASE_PATH"
	EnvDebug        = "BELLMEMO_DEBUG"
	EnvFile         = ".env"
)

type Config struct {
	DatabasePath  string `json:"database_path,omitempty"`
	DataDirectory string `json:"data_directory,omitempty"`
	Debug         bool   `json:"debug"`

	// HTTP API defaults used by `bell-memo serve`
	ServerHost string `json:"server_host,omitempty"`
	ServerPort int    `json:"server_port,omitempty"`

	// Page size used by list commands when no limit is given
	ListLimit int `json:"list_limit,omitempty"`
}

// Keys accepted by Set, in display order.
var Keys = []string{"data-dir", "database-path", "debug", "server-host", "server-port", "list-limit"}

func getDefaultConfig() Config {
	return Config{
		DatabasePath:  "", // Will be set to DataDirectory/memo.db
		DataDirectory: "", // Will be set to ~/.local/share/bell-memo
		Debug:         false,
		ServerHost:    "localhost",
		ServerPort:    8080,
		ListLimit:     constants.DefaultListLimit,
	}
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, appName, configFileName), nil
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "."+appName)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, appName)
}

// Load reads the config file (falling back to defaults when it does not exist)
// and then applies environment overrides, including those from a local .env file.
func Load() (*Config, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadFile reads only the config file, without environment overrides. Use it
// when the result is going to be saved back.
func LoadFile() (*Config, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func readFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := getDefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	if path := os.Getenv(EnvDatabasePath); path != "" {
		cfg.DatabasePath = path
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	return nil
}

func (c *Config) fillDefaults() {
	defaults := getDefaultConfig()

	if c.DataDirectory == "" {
		c.DataDirectory = GetDefaultDataDirectory()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDirectory, dbFileName)
	}
	if c.ServerHost == "" {
		c.ServerHost = defaults.ServerHost
	}
	if c.ServerPort == 0 {
		c.ServerPort = defaults.ServerPort
	}
	if c.ListLimit <= 0 {
		c.ListLimit = defaults.ListLimit
	}
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), constants.DataDirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if cfg.DataDirectory != "" {
		if err := os.MkdirAll(cfg.DataDirectory, constants.DataDirMode); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, constants.ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func InitializeConfig(dataDir string) (*Config, error) {
	cfg := getDefaultConfig()

	if dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}
	cfg.DatabasePath = filepath.Join(cfg.DataDirectory, dbFileName)

	if err := Save(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDirectory, dbFileName)
}

// ServerAddr returns host:port for the HTTP API
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Get returns the string form of a configuration key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "data-dir":
		return c.DataDirectory, nil
	case "database-path":
		return c.GetDatabasePath(), nil
	case "debug":
		return strconv.FormatBool(c.Debug), nil
	case "server-host":
		return c.ServerHost, nil
	case "server-port":
		return strconv.Itoa(c.ServerPort), nil
	case "list-limit":
		return strconv.Itoa(c.ListLimit), nil
	}
	return "", fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
}

// Set updates a configuration key from its string form. It does not save.
func (c *Config) Set(key, value string) error {
	switch key {
	case "data-dir":
		c.DataDirectory = value
		c.DatabasePath = "" // Will be regenerated
	case "database-path":
		c.DatabasePath = value
	case "debug":
		debug, err := ParseBool(value)
		if err != nil {
			return err
		}
		c.Debug = debug
	case "server-host":
		c.ServerHost = value
	case "server-port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %s", value)
		}
		c.ServerPort = port
	case "list-limit":
		limit, err := strconv.Atoi(value)
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid list limit: %s", value)
		}
		c.ListLimit = limit
	default:
		return fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}
	return nil
}

// ParseBool accepts true/false, yes/no and 1/0.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case constants.BoolTrue, constants.BoolYes, constants.BoolOne:
		return true, nil
	case constants.BoolFalse, constants.BoolNo, constants.BoolZero:
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", interrors.ErrInvalidBoolean, value)
}
