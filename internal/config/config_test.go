package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	interrors "github.com/bellmemo/bell-memo/internal/errors"
)

// isolate points the config and data directories at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "share"))
	t.Setenv(EnvDatabasePath, "")
	t.Setenv(EnvDebug, "")
	return tempDir
}

func TestGetDefaultDataDirectory(t *testing.T) {
	tests := []struct {
		name     string
		xdgHome  string
		expected string
	}{
		{
			name:     "With XDG_DATA_HOME set",
			xdgHome:  "/custom/data",
			expected: "/custom/data/bell-memo",
		},
		{
			name:    "Without XDG_DATA_HOME",
			xdgHome: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tt.xdgHome)
			result := GetDefaultDataDirectory()

			expected := tt.expected
			if tt.xdgHome == "" {
				homeDir, _ := os.UserHomeDir()
				expected = filepath.Join(homeDir, ".local", "share", "bell-memo")
			}
			if result != expected {
				t.Errorf("Expected %s, got %s", expected, result)
			}
		})
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir := isolate(t)
	configFile := filepath.Join(tempDir, "bell-memo", "config.json")
	dataDir := filepath.Join(tempDir, "test-data")

	testConfig := &Config{
		DataDirectory: dataDir,
		DatabasePath:  filepath.Join(dataDir, "memo.db"),
		Debug:         true,
		ServerHost:    "0.0.0.0",
		ServerPort:    9090,
		ListLimit:     5,
	}

	if err := Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configFile)
	if os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config file mode 0600, got %o", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loaded != *testConfig {
		t.Errorf("Loaded config mismatch:\nexpected %+v\ngot      %+v", *testConfig, *loaded)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	tempDir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	expectedDataDir := filepath.Join(tempDir, "share", "bell-memo")
	if cfg.DataDirectory != expectedDataDir {
		t.Errorf("Expected DataDirectory %s, got %s", expectedDataDir, cfg.DataDirectory)
	}
	if cfg.GetDatabasePath() != filepath.Join(expectedDataDir, "memo.db") {
		t.Errorf("Unexpected database path %s", cfg.GetDatabasePath())
	}
	if cfg.ServerPort != 8080 || cfg.ServerHost != "localhost" {
		t.Errorf("Expected default server localhost:8080, got %s", cfg.ServerAddr())
	}
	if cfg.ListLimit != 20 {
		t.Errorf("Expected default list limit 20, got %d", cfg.ListLimit)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	tempDir := isolate(t)

	configDir := filepath.Join(tempDir, "bell-memo")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	partialConfig := map[string]interface{}{
		"server_port": 3000,
	}
	data, _ := json.MarshalIndent(partialConfig, "", "  ")
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServerPort != 3000 {
		t.Errorf("Expected ServerPort 3000, got %d", cfg.ServerPort)
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("Expected default ServerHost, got %s", cfg.ServerHost)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tempDir := isolate(t)
	dbPath := filepath.Join(tempDir, "override.db")
	t.Setenv(EnvDatabasePath, dbPath)
	t.Setenv(EnvDebug, "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetDatabasePath() != dbPath {
		t.Errorf("Expected database path %s, got %s", dbPath, cfg.GetDatabasePath())
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled by environment")
	}
}

func TestSaveDoesNotPersistEnvOverrides(t *testing.T) {
	tempDir := isolate(t)
	dbPath := filepath.Join(tempDir, "override.db")
	t.Setenv(EnvDatabasePath, dbPath)

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}
	if cfg.GetDatabasePath() == dbPath {
		t.Fatalf("LoadFile applied the %s override", EnvDatabasePath)
	}
	if err := cfg.Set("debug", "true"); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	t.Setenv(EnvDatabasePath, "")
	reloaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.GetDatabasePath() == dbPath {
		t.Errorf("Environment override %s was written to the config file", dbPath)
	}
	if !reloaded.Debug {
		t.Error("Expected debug=true to be saved")
	}
}

func TestLoadInvalidEnvBoolean(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDebug, "maybe")

	_, err := Load()
	if !errors.Is(err, interrors.ErrInvalidBoolean) {
		t.Errorf("Expected ErrInvalidBoolean, got %v", err)
	}
}

func TestInitializeConfig(t *testing.T) {
	tempDir := isolate(t)
	dataDir := filepath.Join(tempDir, "data")

	cfg, err := InitializeConfig(dataDir)
	if err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if cfg.DataDirectory != dataDir {
		t.Errorf("Expected DataDirectory %s, got %s", dataDir, cfg.DataDirectory)
	}
	expectedDBPath := filepath.Join(dataDir, "memo.db")
	if cfg.DatabasePath != expectedDBPath {
		t.Errorf("Expected DatabasePath %s, got %s", expectedDBPath, cfg.DatabasePath)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "bell-memo", "config.json")); os.IsNotExist(err) {
		t.Fatal("Config file was not created during initialization")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Fatal("Data directory was not created during initialization")
	}
}

func TestGetDatabasePath(t *testing.T) {
	tests := []struct {
		name         string
		config       Config
		expectedPath string
	}{
		{
			name: "With DatabasePath set",
			config: Config{
				DatabasePath:  "/custom/path/memo.db",
				DataDirectory: "/data",
			},
			expectedPath: "/custom/path/memo.db",
		},
		{
			name: "Without DatabasePath set",
			config: Config{
				DataDirectory: "/data",
			},
			expectedPath: "/data/memo.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.config.GetDatabasePath(); result != tt.expectedPath {
				t.Errorf("Expected %s, got %s", tt.expectedPath, result)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := getDefaultConfig()

	tests := []struct {
		key     string
		value   string
		want    string
		wantErr error
	}{
		{key: "debug", value: "1", want: "true"},
		{key: "debug", value: "no", want: "false"},
		{key: "debug", value: "perhaps", wantErr: interrors.ErrInvalidBoolean},
		{key: "server-host", value: "0.0.0.0", want: "0.0.0.0"},
		{key: "server-port", value: "9000", want: "9000"},
		{key: "list-limit", value: "7", want: "7"},
		{key: "database-path", value: "/tmp/x.db", want: "/tmp/x.db"},
		{key: "colour", value: "blue", wantErr: interrors.ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSetInvalidPort(t *testing.T) {
	cfg := getDefaultConfig()
	for _, v := range []string{"abc", "0", "70000"} {
		if err := cfg.Set("server-port", v); err == nil {
			t.Errorf("Expected error for port %q", v)
		}
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("Invalid port should leave ServerPort unchanged, got %d", cfg.ServerPort)
	}
}

func TestSetDataDirResetsDatabasePath(t *testing.T) {
	cfg := Config{DataDirectory: "/old", DatabasePath: "/old/memo.db"}
	if err := cfg.Set("data-dir", "/new"); err != nil {
		t.Fatal(err)
	}
	if cfg.GetDatabasePath() != "/new/memo.db" {
		t.Errorf("Expected database path to follow data dir, got %s", cfg.GetDatabasePath())
	}
}
