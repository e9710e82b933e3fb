package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"quicklaunch/internal/fileutil"
)

const (
	maxConfigFileBytes int64 = 1 << 20 // 1MB

	appDirName     = "quicklaunch"
	configFileName = "config.yaml"
	envFileName    = ".env"

	defaultHistoryMaxRows = 1000
)

// Environment overrides. They win over both config.yaml and .env.
const (
	EnvLogLevel = "QUICKLAUNCH_LOG_LEVEL"
	EnvDataDir  = "QUICKLAUNCH_DATA_DIR"
	EnvTerminal = "QUICKLAUNCH_TERMINAL"
)

// defaultConfigDirFn is a test seam; tests override it to simulate
// directory-resolution failures in validateConfigPath.
var defaultConfigDirFn = defaultConfigDir
var userHomeDirFn = os.UserHomeDir
var lookupEnvFn = os.LookupEnv

var defaultPathWarningState struct {
	mu       sync.Mutex
	messages []string
}

func recordDefaultPathWarning(message string) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}
	defaultPathWarningState.mu.Lock()
	defaultPathWarningState.messages = append(defaultPathWarningState.messages, trimmed)
	defaultPathWarningState.mu.Unlock()
}

// ConsumeDefaultPathWarnings returns and clears path-resolution warnings
// accumulated during DefaultPath() calls.
func ConsumeDefaultPathWarnings() []string {
	defaultPathWarningState.mu.Lock()
	defer defaultPathWarningState.mu.Unlock()
	if len(defaultPathWarningState.messages) == 0 {
		return nil
	}
	out := make([]string, len(defaultPathWarningState.messages))
	copy(out, defaultPathWarningState.messages)
	defaultPathWarningState.messages = nil
	return out
}

// HistoryConfig controls the launch journal.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	MaxRows int  `yaml:"max_rows"`
}

// Config is the runtime configuration read from config.yaml. User-facing
// preferences (theme, hotkey, items) live in the settings store instead.
type Config struct {
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file,omitempty"`
	DataDir        string        `yaml:"data_dir,omitempty"`
	Terminal       string        `yaml:"terminal,omitempty"`
	History        HistoryConfig `yaml:"history"`
	Notifications  bool          `yaml:"notifications"`
	SingleInstance bool          `yaml:"single_instance"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		History:        HistoryConfig{Enabled: true, MaxRows: defaultHistoryMaxRows},
		Notifications:  true,
		SingleInstance: true,
	}
}

// DefaultPath resolves the config file path, preferring LOCALAPPDATA over
// APPDATA, falling back to ~/.config when both are unset, and then to
// os.TempDir() if the home directory cannot be resolved.
// The temp-dir fallback is not a stable persistence location and may vary
// between sessions depending on environment configuration.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
	if base == "" {
		base = strings.TrimSpace(os.Getenv("APPDATA"))
	}
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[WARN-CONFIG] using temp dir as config path fallback", "error", err)
			recordDefaultPathWarning(
				"Config path fallback: failed to resolve LOCALAPPDATA/APPDATA/home directory. Using temp directory; items and settings may not persist.",
			)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appDirName, configFileName)
}

// Load reads the config file. A missing or empty file yields defaults. A
// parse failure returns defaults together with the error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := fileutil.ReadLimited(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("[WARN-CONFIG] failed to parse config, using defaults", "path", path, "error", err)
		return DefaultConfig(), err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// EnsureFile writes default config if missing and returns loaded config.
func EnsureFile(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if _, err := Save(path, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save normalizes cfg and writes it atomically. Writes are confined to the
// default config directory. Returns the config actually written.
func Save(path string, cfg Config) (Config, error) {
	normalizedPath, err := validateConfigPath(path)
	if err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := fileutil.WriteAtomic(normalizedPath, raw, 0o600); err != nil {
		return cfg, fmt.Errorf("save config: %w", err)
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return cfg, nil
}

// LoadEnv layers overrides onto cfg: first the .env file next to configPath,
// then the process environment. A missing .env is not an error.
func LoadEnv(configPath string, cfg Config) (Config, error) {
	fileVars := map[string]string{}
	if configPath != "" {
		envPath := filepath.Join(filepath.Dir(configPath), envFileName)
		vars, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read %s: %w", envPath, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnvFn(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvTerminal); ok {
		cfg.Terminal = v
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Level returns the slog level for cfg.LogLevel. Unknown values mean info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ResolveDataDir returns the directory holding items.json and settings.json.
// An empty data_dir means the directory of configPath.
func (c Config) ResolveDataDir(configPath string) string {
	if dir := strings.TrimSpace(c.DataDir); dir != "" {
		return expandPath(dir)
	}
	return filepath.Dir(configPath)
}

// applyDefaults normalizes cfg in place. MUTATES cfg.
func applyDefaults(cfg *Config) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultConfig().LogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		slog.Warn("[WARN-CONFIG] invalid log_level, using info", "value", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	cfg.Terminal = strings.TrimSpace(cfg.Terminal)
	if cfg.History.MaxRows <= 0 {
		if cfg.History.MaxRows < 0 {
			slog.Warn("[WARN-CONFIG] history.max_rows must be positive, using default",
				"value", cfg.History.MaxRows, "default", defaultHistoryMaxRows)
		}
		cfg.History.MaxRows = defaultHistoryMaxRows
	}
}

// expandPath expands a leading ~ and $VAR / ${VAR} references.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := userHomeDirFn(); err == nil {
			path = filepath.Join(home, path[1:])
		} else {
			slog.Warn("[WARN-CONFIG] cannot expand ~ in path", "path", path, "error", err)
		}
	}
	return os.Expand(path, func(name string) string {
		v, _ := lookupEnvFn(name)
		return v
	})
}

// validateConfigPath normalizes path and enforces that config writes stay
// inside the default config directory when that directory is resolvable.
func validateConfigPath(path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return "", errors.New("config path required")
	}
	absolutePath, err := filepath.Abs(trimmedPath)
	if err != nil {
		return "", fmt.Errorf("save config: resolve path: %w", err)
	}

	expectedDir, err := defaultConfigDirFn()
	if err != nil {
		return "", fmt.Errorf("save config: resolve config dir: %w", err)
	}
	absoluteExpectedDir, err := filepath.Abs(expectedDir)
	if err != nil {
		return "", fmt.Errorf("save config: resolve config dir: %w", err)
	}
	if !pathWithinDir(absolutePath, absoluteExpectedDir) {
		return "", fmt.Errorf("save config: path outside config directory: %q", absolutePath)
	}

	return absolutePath, nil
}

func defaultConfigDir() (string, error) {
	return filepath.Dir(DefaultPath()), nil
}

// pathWithinDir blocks directory traversal by ensuring path is under dir.
// It also rejects Windows cross-drive escapes because filepath.Rel returns
// an absolute path when roots differ.
func pathWithinDir(path string, dir string) bool {
	relativePath, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	if relativePath == "." {
		return true
	}
	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(os.PathSeparator)) {
		return false
	}
	return !filepath.IsAbs(relativePath)
}
