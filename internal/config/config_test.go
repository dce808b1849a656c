package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablestore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DatabasePath: DefaultDatabasePath,
		TableName:    DefaultTableName,
		LogLevel:     DefaultLogLevel,
	}, cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /data/points.db\n  table: scores\nlog:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/points.db", cfg.DatabasePath)
	assert.Equal(t, "scores", cfg.TableName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tablestore.yaml"), []byte("database:\n  table: from_cwd\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from_cwd", cfg.TableName)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  path: file.db\n  table: from_file\n")
	t.Setenv("TABLESTORE_DATABASE_TABLE", "from_env")
	t.Setenv("TABLESTORE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DatabasePath)
	assert.Equal(t, "from_env", cfg.TableName)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "database: [unterminated\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestConfig_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.input}
		got, err := cfg.Level()
		if tt.wantErr {
			assert.Error(t, err, tt.input)
		} else {
			assert.NoError(t, err, tt.input)
		}
		assert.Equal(t, tt.want, got, tt.input)
	}
}
