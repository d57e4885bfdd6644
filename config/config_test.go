package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, Config{
		Project:            ".",
		Suffix:             "release",
		TagFormat:          "${artifactId}-${version}",
		UpdateDependencies: true,
	}, cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "suffix",
			envKey: "RELFLOW_SUFFIX",
			envVal: "rc",
			field:  func(c Config) any { return c.Suffix },
			want:   "rc",
		},
		{
			name:   "update_dependencies",
			envKey: "RELFLOW_UPDATE_DEPENDENCIES",
			envVal: "false",
			field:  func(c Config) any { return c.UpdateDependencies },
			want:   false,
		},
		{
			name:   "consistent",
			envKey: "RELFLOW_CONSISTENT",
			envVal: "true",
			field:  func(c Config) any { return c.Consistent },
			want:   true,
		},
		{
			name:   "release_version",
			envKey: "RELFLOW_RELEASE_VERSION",
			envVal: "4.0",
			field:  func(c Config) any { return c.ReleaseVersion },
			want:   "4.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			v := viper.New()
			require.NoError(t, Init(v, "", t.TempDir()))
			cfg, err := Load(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.field(cfg))
		})
	}
}

func TestInitReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "suffix: beta\nstaged: true\ntag_format: v${version}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte(content), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, "", dir))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "beta", cfg.Suffix)
	assert.True(t, cfg.Staged)
	assert.Equal(t, "v${version}", cfg.TagFormat)
	assert.True(t, cfg.UpdateDependencies, "unset keys keep defaults")
}

func TestInitExplicitFileMustExist(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestInitMissingFileIsFine(t *testing.T) {
	v := viper.New()
	assert.NoError(t, Init(v, "", t.TempDir()))
}

func TestLoadRejectsEmptyProject(t *testing.T) {
	v := viper.New()
	v.Set("project", " ")
	_, err := Load(v)
	assert.ErrorContains(t, err, "project path")
}
