package config

import (
	"fmt"

	"github.com/derailed/tcell/v2"
)

// Color represents a color in a palette
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"

	// TransparentColor represents the terminal bg color
	TransparentColor Color = "-"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as string
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor || c == TransparentColor || c == "" {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == TransparentColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// Valid reports whether the color resolves to something tcell can draw.
func (c Color) Valid() bool {
	if c == DefaultColor || c == TransparentColor {
		return true
	}
	return c != "" && tcell.GetColor(string(c)) != tcell.ColorDefault
}

// Palette is the set of colors a presentation variant paints with
type Palette struct {
	Background Color `yaml:"background"`
	Foreground Color `yaml:"foreground"`
	Border     Color `yaml:"border"`
	Title      Color `yaml:"title"`
	Accent     Color `yaml:"accent"`
}

// Merge returns p with every empty field taken from fallback.
func (p Palette) Merge(fallback Palette) Palette {
	pick := func(c, f Color) Color {
		if c == "" {
			return f
		}
		return c
	}
	return Palette{
		Background: pick(p.Background, fallback.Background),
		Foreground: pick(p.Foreground, fallback.Foreground),
		Border:     pick(p.Border, fallback.Border),
		Title:      pick(p.Title, fallback.Title),
		Accent:     pick(p.Accent, fallback.Accent),
	}
}

// Validate checks that every palette entry is set and parseable
func (p Palette) Validate() error {
	required := []struct {
		name  string
		color Color
	}{
		{"background", p.Background},
		{"foreground", p.Foreground},
		{"border", p.Border},
		{"title", p.Title},
		{"accent", p.Accent},
	}

	for _, req := range required {
		if req.color == "" {
			return fmt.Errorf("missing required palette color: %s", req.name)
		}
		if !req.color.Valid() {
			return fmt.Errorf("invalid palette color %s: %q", req.name, req.color)
		}
	}

	return nil
}

// DarkPalette returns the Dracula-based dark palette
func DarkPalette() Palette {
	return Palette{
		Background: NewColor("#282a36"),
		Foreground: NewColor("#f8f8f2"),
		Border:     NewColor("#44475a"),
		Title:      NewColor("#f1fa8c"),
		Accent:     NewColor("#8be9fd"),
	}
}

// LightPalette returns the clean light palette
func LightPalette() Palette {
	return Palette{
		Background: NewColor("#ffffff"),
		Foreground: NewColor("#24292f"),
		Border:     NewColor("#d0d7de"),
		Title:      NewColor("#0550ae"),
		Accent:     NewColor("#8250df"),
	}
}
