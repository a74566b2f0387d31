package config

import (
	"os"
	"strconv"
	"strings"

	"semsynth/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Models   ModelConfig
	Output   OutputConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// DataConfig locates the observation table and names its special columns
type DataConfig struct {
	// ObservationFile is the subject-level CSV or XLSX export.
	ObservationFile string
	// Sheet selects the workbook sheet for XLSX inputs; empty means first.
	Sheet string
	// WeightColumn names the analysis weight column. Empty or absent
	// columns fall back to unit weights.
	WeightColumn string
}

// ModelConfig locates the fitted-model exports
type ModelConfig struct {
	// MainDir holds the main model's structural_parameterEstimates.txt
	// and structural_fitMeasures.txt.
	MainDir string
	// TotalEffectDir holds the total-effect model's exports.
	TotalEffectDir string
	// GroupDirs holds per-grouping-variable multi-group export roots,
	// comma-separated as "variable=dir" pairs.
	GroupDirs map[string]string
	// BootstrapReplicates and CIType are display metadata for the report.
	BootstrapReplicates int
	CIType              string
}

// OutputConfig controls where run payloads land
type OutputConfig struct {
	Dir string
}

// ServerConfig holds report server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds publish-target settings. URL empty means publishing
// is disabled and the no-op sink is wired.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			ObservationFile: getEnvOrDefault("OBSERVATION_FILE", ""),
			Sheet:           getEnvOrDefault("OBSERVATION_SHEET", ""),
			WeightColumn:    getEnvOrDefault("WEIGHT_COLUMN", "psw"),
		},
		Models: ModelConfig{
			MainDir:             getEnvOrDefault("MAIN_MODEL_DIR", ""),
			TotalEffectDir:      getEnvOrDefault("TOTAL_EFFECT_DIR", ""),
			GroupDirs:           parseGroupDirs(os.Getenv("GROUP_MODEL_DIRS")),
			BootstrapReplicates: getEnvIntOrDefault("BOOTSTRAP_REPLICATES", 2000),
			CIType:              getEnvOrDefault("CI_TYPE", "bca.simple"),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "./out"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Models.MainDir == "" {
		return errors.ConfigInvalid("MAIN_MODEL_DIR is required")
	}
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("OUTPUT_DIR must not be empty")
	}
	return nil
}

// parseGroupDirs parses "re_all=path/to/dir,sex=path/to/other" pairs.
func parseGroupDirs(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		variable, dir, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && variable != "" && dir != "" {
			out[variable] = dir
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
