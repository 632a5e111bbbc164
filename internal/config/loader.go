package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/moadamda/tracker/internal/errorwrapper"
)

// GetConfigPath determines the configuration file path.
// Priority:
// 1. explicit path argument (command-line flag)
// 2. MOADAMDA_TRACKER_CONFIG environment variable
// 3. tracker.yaml / tracker.json in the current working directory
// 4. tracker.yaml / tracker.json in the executable's directory
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if _, err := os.Stat(configFilePathFlag); err == nil {
			return configFilePathFlag
		}
	}

	envPath := os.Getenv("MOADAMDA_TRACKER_CONFIG")
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"tracker.yaml", "tracker.json"}
	locations := []string{}

	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if errExe == nil && exeDir != "" && (errCwd != nil || exeDir != cwd) {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range defaultFiles {
			path := filepath.Join(loc, file)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadTrackerConfig loads configuration from the given path. An empty path
// yields the default configuration.
func LoadTrackerConfig(configPath string, logger zerolog.Logger) (*TrackerConfig, error) {
	loaderLogger := logger.With().Str("component", "ConfigLoader").Logger()

	cfg := NewDefaultTrackerConfig()

	if configPath == "" {
		loaderLogger.Info().Msg("No config file specified, using defaults")
		if err := ValidateConfig(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorwrapper.NewError("config file does not exist: %s", configPath)
		}
		return nil, errorwrapper.WrapError(err, "failed to read config file")
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse YAML config")
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse JSON config")
		}
	default:
		return nil, errorwrapper.NewError("unsupported config file extension: %s", filepath.Ext(configPath))
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	loaderLogger.Info().Str("path", configPath).Msg("Configuration loaded")
	return cfg, nil
}
