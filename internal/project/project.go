// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ext is the project file extension.
const Ext = ".pbnproj"

// ErrNoImage is returned by Load for a project that names no matrix or palette.
var ErrNoImage = errors.New("project names no matrix or palette")

// File represents a paint-by-number project file (.pbnproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Locations relative to the project file, absolute, or http(s) URLs.
	MatrixPath  string `json:"matrix"`
	PalettePath string `json:"palette"`

	// ProgressPath is the progress store file (relative to project file).
	ProgressPath string `json:"progress,omitempty"`

	// SectionSize overrides the configured section side when positive.
	SectionSize int `json:"section_size,omitempty"`
}

// New creates a new project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .pbnproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if proj.MatrixPath == "" || proj.PalettePath == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoImage)
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetSource records the matrix and palette locations, relative to the
// project where possible.
func (p *File) SetSource(projectPath, matrixPath, palettePath string) {
	p.MatrixPath = relative(projectPath, matrixPath)
	p.PalettePath = relative(projectPath, palettePath)
	p.Modified = time.Now()
}

// GetMatrixPath returns the location of the matrix.
func (p *File) GetMatrixPath(projectPath string) string {
	return resolve(projectPath, p.MatrixPath)
}

// GetPalettePath returns the location of the palette.
func (p *File) GetPalettePath(projectPath string) string {
	return resolve(projectPath, p.PalettePath)
}

// GetProgressPath returns the absolute path to the progress file.
func (p *File) GetProgressPath(projectPath string) string {
	if p.ProgressPath == "" {
		// Default: project_name_progress.json
		base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
		return base + "_progress.json"
	}
	return resolve(projectPath, p.ProgressPath)
}

// IsProject reports whether path names a project file.
func IsProject(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

func isURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func relative(projectPath, loc string) string {
	if isURL(loc) {
		return loc
	}
	abs, err := filepath.Abs(loc)
	if err != nil {
		return loc
	}
	dir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return loc
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return loc
	}
	return rel
}

func resolve(projectPath, loc string) string {
	if loc == "" || isURL(loc) || filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(filepath.Dir(projectPath), loc)
}
