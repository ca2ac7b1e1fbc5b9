package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"paint-by-number/internal/progress"
	"paint-by-number/internal/project"
	"paint-by-number/internal/render"
	"paint-by-number/internal/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds settings read from the environment.
type Config struct {
	MatrixPath  string
	PalettePath string
	StorePath   string
	SectionSize int
	MaxWidth    int
	MaxHeight   int
	LogLevel    logrus.Level
	LogFormat   string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MatrixPath:  "matrix.json",
		PalettePath: "palette.json",
		StorePath:   store.DefaultPath(),
		SectionSize: progress.DefaultSectionSize,
		MaxWidth:    render.DefaultMaxWidth,
		MaxHeight:   render.DefaultMaxHeight,
		LogLevel:    logrus.InfoLevel,
		LogFormat:   "text",
	}
}

// LoadConfig reads .env files into the environment and then builds a Config
// from PBN_* variables. With no arguments an optional ./.env is read; files
// named explicitly must exist.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to read env files: %w", err)
	}

	cfg := DefaultConfig()
	if v := os.Getenv("PBN_MATRIX"); v != "" {
		cfg.MatrixPath = v
	}
	if v := os.Getenv("PBN_PALETTE"); v != "" {
		cfg.PalettePath = v
	}
	if v := os.Getenv("PBN_STORE"); v != "" {
		cfg.StorePath = v
	}

	for _, it := range []struct {
		name string
		dst  *int
	}{
		{"PBN_SECTION_SIZE", &cfg.SectionSize},
		{"PBN_MAX_WIDTH", &cfg.MaxWidth},
		{"PBN_MAX_HEIGHT", &cfg.MaxHeight},
	} {
		if err := envInt(it.name, it.dst); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("PBN_LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("PBN_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("PBN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	return cfg, nil
}

// ApplyProject points the config at the image, palette and progress file
// named by a project loaded from path.
func (c *Config) ApplyProject(p *project.File, path string) {
	c.MatrixPath = p.GetMatrixPath(path)
	c.PalettePath = p.GetPalettePath(path)
	c.StorePath = p.GetProgressPath(path)
	if p.SectionSize > 0 {
		c.SectionSize = p.SectionSize
	}
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s: want a positive integer, got %q", name, v)
	}
	*dst = n
	return nil
}

// NewLogger builds a logger for the configured level and format.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
