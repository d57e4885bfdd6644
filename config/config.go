// Package config loads relflow CLI settings from .relflow.yaml, RELFLOW_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file base name searched for by Init.
const FileName = ".relflow"

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "RELFLOW"

// Config holds the settings of one relflow invocation.
type Config struct {
	Project            string `mapstructure:"project"`
	StateFile          string `mapstructure:"state_file"`
	Suffix             string `mapstructure:"suffix"`
	TagFormat          string `mapstructure:"tag_format"`
	Consistent         bool   `mapstructure:"consistent"`
	UpdateDependencies bool   `mapstructure:"update_dependencies"`
	AllowSnapshots     bool   `mapstructure:"allow_snapshots"`
	Staged             bool   `mapstructure:"staged"`
	Verbose            bool   `mapstructure:"verbose"`
	ReleaseVersion     string `mapstructure:"release_version"`
	DevelopmentVersion string `mapstructure:"development_version"`
	HotfixVersion      string `mapstructure:"hotfix_version"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("project", ".")
	v.SetDefault("state_file", "")
	v.SetDefault("suffix", "release")
	v.SetDefault("tag_format", "${artifactId}-${version}")
	v.SetDefault("consistent", false)
	v.SetDefault("update_dependencies", true)
	v.SetDefault("allow_snapshots", false)
	v.SetDefault("staged", false)
	v.SetDefault("verbose", false)
	v.SetDefault("release_version", "")
	v.SetDefault("development_version", "")
	v.SetDefault("hotfix_version", "")
}

// Init points v at the configuration file and the environment. An empty
// file searches for .relflow.yaml in dirs. A missing file is not an error.
func Init(v *viper.Viper, file string, dirs ...string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load applies defaults and decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Project) == "" {
		return Config{}, errors.New("project path must not be empty")
	}
	return cfg, nil
}
