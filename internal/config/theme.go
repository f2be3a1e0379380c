package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThemeLoader handles loading palette themes from a directory
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{
		themesDir: themesDir,
	}
}

// themeFile is the on-disk layout of a theme
type themeFile struct {
	Palette *Palette `yaml:"palette"`
}

// LoadTheme loads a theme by name ("light" resolves to light.yaml)
func (tl *ThemeLoader) LoadTheme(name string) (Palette, error) {
	fileName := name
	if filepath.Ext(fileName) != ".yaml" {
		fileName += ".yaml"
	}
	return tl.LoadThemeFromFile(fileName)
}

// LoadThemeFromFile loads a theme from a YAML file
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (Palette, error) {
	// Try to load from themes directory first
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		// Try absolute path
		path = filename
		if !fileExists(path) {
			return Palette{}, fmt.Errorf("theme file not found: %s", filename)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, fmt.Errorf("failed to read theme file: %w", err)
	}

	var theme themeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return Palette{}, fmt.Errorf("failed to parse theme file: %w", err)
	}

	if theme.Palette == nil {
		return Palette{}, fmt.Errorf("invalid theme file: missing palette section")
	}

	return *theme.Palette, nil
}

// ListAvailableThemes returns the names of the themes in the directory
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	var themes []string

	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			themes = append(themes, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}

	return themes, nil
}

// SaveTheme saves a palette as a named theme file
func (tl *ThemeLoader) SaveTheme(name string, palette Palette) error {
	if err := os.MkdirAll(tl.themesDir, 0755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	data, err := yaml.Marshal(themeFile{Palette: &palette})
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	path := filepath.Join(tl.themesDir, name+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}

	return nil
}

// Helper function to check if file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
