package variant

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ajramos/snapvariant/internal/config"
)

// Provider supplies the closed variant set a test runs under
type Provider interface {
	Variants() (Set, error)
}

type staticProvider struct {
	vs []Variant
}

// Static returns a provider for a fixed list of variants. Validation is
// deferred to Variants so an empty list surfaces as a ConfigurationError at
// the point a test asks for it.
func Static(vs ...Variant) Provider {
	return staticProvider{vs: vs}
}

func (p staticProvider) Variants() (Set, error) {
	return NewSet(p.vs...)
}

// Defaults returns the built-in Light/Dark provider
func Defaults() Provider {
	return Static(Light(), Dark())
}

// FileProvider loads variants from a YAML file
type FileProvider struct {
	path   string
	themes *config.ThemeLoader
}

// NewFileProvider creates a provider for the variants file at path; theme
// references resolve against themesDir.
func NewFileProvider(path, themesDir string) *FileProvider {
	return &FileProvider{
		path:   path,
		themes: config.NewThemeLoader(themesDir),
	}
}

type fileVariant struct {
	Name    string         `yaml:"name"`
	Dark    bool           `yaml:"dark"`
	Locale  string         `yaml:"locale"`
	Theme   string         `yaml:"theme"`
	Palette config.Palette `yaml:"palette"`
}

type variantsFile struct {
	Variants []fileVariant `yaml:"variants"`
}

// Variants reads and validates the file on every call; the file is the
// source of truth and is small.
func (p *FileProvider) Variants() (Set, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return Set{}, &ConfigurationError{Source: p.path, Err: fmt.Errorf("read variants file: %w", err)}
	}

	var file variantsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Set{}, &ConfigurationError{Source: p.path, Err: fmt.Errorf("parse variants file: %w", err)}
	}

	vs := make([]Variant, 0, len(file.Variants))
	for _, fv := range file.Variants {
		v, err := p.resolve(fv)
		if err != nil {
			return Set{}, &ConfigurationError{Source: p.path, Err: err}
		}
		vs = append(vs, v)
	}

	set, err := NewSet(vs...)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.Source = p.path
		}
		return Set{}, err
	}
	return set, nil
}

// resolve layers inline palette over theme file over the built-in palette
func (p *FileProvider) resolve(fv fileVariant) (Variant, error) {
	v := Variant{
		Name:   fv.Name,
		Dark:   fv.Dark,
		Locale: language.AmericanEnglish,
	}

	if fv.Locale != "" {
		tag, err := language.Parse(fv.Locale)
		if err != nil {
			return Variant{}, fmt.Errorf("%w %q for %q: %v", ErrInvalidLocale, fv.Locale, fv.Name, err)
		}
		v.Locale = tag
	}

	base := config.LightPalette()
	if fv.Dark {
		base = config.DarkPalette()
	}
	if fv.Theme != "" {
		theme, err := p.themes.LoadTheme(fv.Theme)
		if err != nil {
			return Variant{}, fmt.Errorf("%w %q: %v", ErrInvalidPalette, fv.Name, err)
		}
		base = theme.Merge(base)
	}
	v.Palette = fv.Palette.Merge(base)

	return v, nil
}
