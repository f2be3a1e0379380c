package variant

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajramos/snapvariant/internal/config"
)

// Variant is one presentation context a test is executed under
type Variant struct {
	Name    string
	Dark    bool
	Locale  language.Tag
	Palette config.Palette
}

// Light returns the built-in light variant
func Light() Variant {
	return Variant{
		Name:    "Light",
		Locale:  language.AmericanEnglish,
		Palette: config.LightPalette(),
	}
}

// Dark returns the built-in dark variant
func Dark() Variant {
	return Variant{
		Name:    "Dark",
		Dark:    true,
		Locale:  language.AmericanEnglish,
		Palette: config.DarkPalette(),
	}
}

// ID is the lower-cased name used in artifact names and subtest names
func (v Variant) ID() string {
	return strings.ToLower(v.Name)
}

// Printer formats numbers and messages for the variant's locale
func (v Variant) Printer() *message.Printer {
	return message.NewPrinter(v.Locale)
}

func (v Variant) String() string {
	mode := "light"
	if v.Dark {
		mode = "dark"
	}
	return fmt.Sprintf("%s (%s, %s)", v.Name, mode, v.Locale)
}

func (v Variant) validate() error {
	if err := validateName(v.Name); err != nil {
		return err
	}
	if err := v.Palette.Validate(); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidPalette, v.Name, err)
	}
	return nil
}

// validateName keeps names safe as the last component of an artifact name:
// no separators, no whitespace, nothing a file system would reinterpret.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			continue
		}
		return fmt.Errorf("%w %q: character %q not allowed", ErrInvalidName, name, r)
	}
	return nil
}
