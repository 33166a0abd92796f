package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadSettings_Defaults(t *testing.T) {
	chdirTemp(t)

	s, err := LoadSettings(NewViper(""))
	require.NoError(t, err)

	assert.Equal(t, "", s.TablesDir)
	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, "console", s.Log.Format)
	assert.Equal(t, "console", s.Output.Format)
	assert.True(t, s.Compare.Concurrent)
}

func TestLoadSettings_FromFile(t *testing.T) {
	dir := chdirTemp(t)
	content := `
tables_dir: /opt/tables
log:
  level: debug
  format: json
output:
  format: CSV
compare:
  concurrent: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rpcore.yaml"), []byte(content), 0o644))

	s, err := LoadSettings(NewViper(""))
	require.NoError(t, err)

	assert.Equal(t, "/opt/tables", s.TablesDir)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "csv", s.Output.Format)
	assert.False(t, s.Compare.Concurrent)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rpcore.yaml"), []byte("log:\n  level: debug\n"), 0o644))
	t.Setenv("RPCORE_LOG_LEVEL", "error")
	t.Setenv("RPCORE_TABLES_DIR", "/env/tables")

	s, err := LoadSettings(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "error", s.Log.Level)
	assert.Equal(t, "/env/tables", s.TablesDir)
}

func TestLoadSettings_ExplicitFileMissing(t *testing.T) {
	chdirTemp(t)
	_, err := LoadSettings(NewViper("missing.yaml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	chdirTemp(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "console", "")
	require.NoError(t, flags.Parse([]string{"--format", "json"}))

	v := NewViper("")
	require.NoError(t, BindFlags(v, flags, map[string]string{
		"output.format": "format",
		"tables_dir":    "tables", // not registered, skipped
	}))

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Output.Format)
	assert.Equal(t, "", s.TablesDir)
}

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogSettings
		level   zapcore.Level
		wantErr bool
	}{
		{"console debug", LogSettings{Level: "debug", Format: "console"}, zapcore.DebugLevel, false},
		{"json warn", LogSettings{Level: "warn", Format: "json"}, zapcore.WarnLevel, false},
		{"default level", LogSettings{Format: "json"}, zapcore.InfoLevel, false},
		{"bad level", LogSettings{Level: "loud"}, zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewZapLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.level-1))
			}
		})
	}
}
