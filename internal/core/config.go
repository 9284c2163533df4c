// Package core contains the metric conversion logic: checking metric
// formulas against event lists, translating perfmon metrics to the perfspect
// format, reconciling metric files, and loading tool configuration.
package core

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/intel/svr-info/internal/storage"
	"github.com/intel/svr-info/pkg/models"
	"github.com/spf13/viper"
)

// ConfigFileName is the base name of the optional configuration file.
const ConfigFileName = ".perfmetrics"

// ConfigurationManager loads and validates tool configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	basePath   string
	configFile string
}

// NewConfigurationManager creates a ConfigurationManager that looks for
// .perfmetrics.yaml in basePath. A non-empty configFile is read instead.
func NewConfigurationManager(basePath, configFile string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath, configFile: configFile}
}

// logLevels are the accepted values of log.level.
var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultGlobalConfig returns a GlobalConfig populated with the defaults.
// Run history is off until log.events names a file.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		LogLevel:     "warn",
		ConstPrefix:  DefaultConstPrefix,
		OriginTag:    models.OriginPerfSpect,
		OutputIndent: storage.DefaultIndent,
	}
}

// LoadGlobalConfig reads the configuration file with Viper. Environment
// variables prefixed PERFMETRICS_ override file values, e.g.
// PERFMETRICS_LOG_LEVEL=debug. A missing file yields the defaults.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	if cm.configFile != "" {
		// An explicitly named file must exist.
		if _, err := os.Stat(cm.configFile); err != nil {
			return nil, fmt.Errorf("reading %s: %w", cm.configFile, err)
		}
		v.SetConfigFile(cm.configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(cm.basePath)
	}
	v.SetEnvPrefix("PERFMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("log.events", cfg.EventLogPath)
	v.SetDefault("check.const_prefix", cfg.ConstPrefix)
	v.SetDefault("reconcile.origin", cfg.OriginTag)
	v.SetDefault("output.indent", cfg.OutputIndent)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", cm.describe(), err)
		}
	}

	cfg.LogLevel = v.GetString("log.level")
	cfg.EventLogPath = v.GetString("log.events")
	cfg.ConstPrefix = v.GetString("check.const_prefix")
	cfg.OriginTag = v.GetString("reconcile.origin")
	cfg.OutputIndent = v.GetInt("output.indent")

	return cfg, nil
}

func (cm *viperConfigManager) describe() string {
	if cm.configFile != "" {
		return cm.configFile
	}
	return ConfigFileName + ".yaml"
}

// ValidateConfig checks cfg for invalid values and reports all of them.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !slices.Contains(logLevels, strings.ToLower(cfg.LogLevel)) {
		errs = append(errs, fmt.Sprintf("log.level %q is invalid, must be one of: %s", cfg.LogLevel, strings.Join(logLevels, ", ")))
	}

	if cfg.ConstPrefix == "" {
		errs = append(errs, "check.const_prefix must not be empty")
	}

	if cfg.OriginTag == "" {
		errs = append(errs, "reconcile.origin must not be empty")
	}

	if cfg.OutputIndent < 0 || cfg.OutputIndent > 8 {
		errs = append(errs, fmt.Sprintf("output.indent %d is invalid, must be between 0 and 8", cfg.OutputIndent))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
