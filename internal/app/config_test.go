package app

import (
	"os"
	"path/filepath"
	"testing"

	"paint-by-number/internal/progress"
	"paint-by-number/internal/project"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PBN_MATRIX", "PBN_PALETTE", "PBN_STORE", "PBN_SECTION_SIZE",
	"PBN_MAX_WIDTH", "PBN_MAX_HEIGHT", "PBN_LOG_LEVEL", "PBN_LOG_FORMAT",
}

// clearEnv unsets every config variable for the duration of the test.
// godotenv never overrides a variable that is set, even to "".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, progress.DefaultSectionSize, cfg.SectionSize)
	require.Equal(t, 1000, cfg.MaxWidth)
	require.Equal(t, 800, cfg.MaxHeight)
}

func TestLoadConfigEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PBN_MATRIX", "art/m.json")
	t.Setenv("PBN_SECTION_SIZE", "25")
	t.Setenv("PBN_LOG_LEVEL", "debug")
	t.Setenv("PBN_LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "art/m.json", cfg.MatrixPath)
	require.Equal(t, "palette.json", cfg.PalettePath)
	require.Equal(t, 25, cfg.SectionSize)
	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PBN_PALETTE=colors.json\nPBN_MAX_WIDTH=640\n"), 0o644))
	t.Setenv("PBN_MAX_WIDTH", "320")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "colors.json", cfg.PalettePath)
	require.Equal(t, 320, cfg.MaxWidth, "environment wins over .env")
}

func TestLoadConfigExplicitFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pbn.env")
	require.NoError(t, os.WriteFile(path, []byte("PBN_STORE=/tmp/p.json\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/p.json", cfg.StorePath)

	_, err = LoadConfig(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero section", "PBN_SECTION_SIZE", "0"},
		{"negative width", "PBN_MAX_WIDTH", "-5"},
		{"not a number", "PBN_MAX_HEIGHT", "tall"},
		{"unknown level", "PBN_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = logrus.WarnLevel
	cfg.LogFormat = "json"

	log := cfg.NewLogger()
	require.Equal(t, logrus.WarnLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	cfg.LogFormat = "text"
	require.IsType(t, &logrus.TextFormatter{}, cfg.NewLogger().Formatter)
}

func TestWithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SectionSize = 5
	cfg.MaxWidth = 250

	s, err := LoadSession(genImage(t, 500, 10, 1, zero), testPalette(1), nil, WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, 5, s.Geometry().Size)
	require.Equal(t, 0.5, s.OverviewScale())
}

func TestApplyProject(t *testing.T) {
	p := project.New("demo")
	p.MatrixPath = "m.json"
	p.PalettePath = "https://example.com/p.json"
	p.SectionSize = 10

	cfg := DefaultConfig()
	cfg.ApplyProject(p, filepath.Join("work", "demo.pbnproj"))
	require.Equal(t, filepath.Join("work", "m.json"), cfg.MatrixPath)
	require.Equal(t, "https://example.com/p.json", cfg.PalettePath)
	require.Equal(t, filepath.Join("work", "demo_progress.json"), cfg.StorePath)
	require.Equal(t, 10, cfg.SectionSize)

	p.SectionSize = 0
	cfg = DefaultConfig()
	cfg.ApplyProject(p, "demo.pbnproj")
	require.Equal(t, progress.DefaultSectionSize, cfg.SectionSize)
}
