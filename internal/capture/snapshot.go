package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/derailed/tcell/v2"

	"github.com/ajramos/snapvariant/internal/config"
)

// Style is the visual state of a single cell
type Style struct {
	Fg    tcell.Color
	Bg    tcell.Color
	Attrs tcell.AttrMask
}

func (s Style) String() string {
	return fmt.Sprintf("fg=%s bg=%s attrs=%s", colorName(s.Fg), colorName(s.Bg), attrNames(s.Attrs))
}

// Cell is one screen cell; Width is 2 for wide runes, whose right half is
// the following cell.
type Cell struct {
	Text  string
	Width int
	Style Style
}

// Snapshot is a captured surface, row-major
type Snapshot struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at column x, row y
func (s *Snapshot) At(x, y int) Cell {
	return s.Cells[y*s.Width+x]
}

// Text returns the characters on screen, one line per row
func (s *Snapshot) Text() string {
	var b strings.Builder
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := s.At(x, y)
			b.WriteString(c.Text)
			if c.Width == 2 {
				x++
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Encode serializes the snapshot in the given format
func (s *Snapshot) Encode(format string) ([]byte, error) {
	switch format {
	case config.FormatText, "":
		return s.encodeText(), nil
	case config.FormatPNG:
		return s.encodePNG()
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}

// Suffix returns the baseline file suffix for a format
func Suffix(format string) string {
	if format == config.FormatPNG {
		return ".png"
	}
	return ".golden"
}

// styleKeys label distinct styles in the style grid, in order of appearance
const styleKeys = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func styleKey(i int) rune {
	if i < len(styleKeys) {
		return rune(styleKeys[i])
	}
	// Latin-1 supplement letters keep keys single-width past the ASCII range
	return rune(0xC0 + i - len(styleKeys))
}

// encodeText writes a character grid, a style-key grid and the legend
// mapping keys to styles. The format is line-oriented so goldie diffs point
// at the changed row.
func (s *Snapshot) encodeText() []byte {
	keys := make(map[Style]rune)
	var legend []Style

	var styles strings.Builder
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			st := s.At(x, y).Style
			k, ok := keys[st]
			if !ok {
				k = styleKey(len(legend))
				keys[st] = k
				legend = append(legend, st)
			}
			styles.WriteRune(k)
		}
		styles.WriteByte('\n')
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "snapshot %dx%d\n", s.Width, s.Height)
	b.WriteString("--- text\n")
	b.WriteString(s.Text())
	b.WriteString("--- styles\n")
	b.WriteString(styles.String())
	b.WriteString("--- legend\n")
	for i, st := range legend {
		fmt.Fprintf(&b, "%c %s\n", styleKey(i), st)
	}
	return b.Bytes()
}

// Cell geometry of the PNG rendering, in pixels
const (
	cellPxWidth  = 8
	cellPxHeight = 16
)

// encodePNG paints every cell as a background block with a foreground bar
// where the cell holds a visible character.
func (s *Snapshot) encodePNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.Width*cellPxWidth, s.Height*cellPxHeight))

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := s.At(x, y)
			fg := toRGBA(c.Style.Fg, color.RGBA{0xc0, 0xc0, 0xc0, 0xff})
			bg := toRGBA(c.Style.Bg, color.RGBA{0x00, 0x00, 0x00, 0xff})
			if c.Style.Attrs&tcell.AttrReverse != 0 {
				fg, bg = bg, fg
			}

			x0, y0 := x*cellPxWidth, y*cellPxHeight
			for py := 0; py < cellPxHeight; py++ {
				for px := 0; px < cellPxWidth; px++ {
					img.SetRGBA(x0+px, y0+py, bg)
				}
			}
			if strings.TrimSpace(c.Text) != "" {
				for py := 4; py < 12; py++ {
					for px := 1; px < cellPxWidth-1; px++ {
						img.SetRGBA(x0+px, y0+py, fg)
					}
				}
			}
			if c.Style.Attrs&tcell.AttrUnderline != 0 {
				for px := 0; px < cellPxWidth; px++ {
					img.SetRGBA(x0+px, y0+cellPxHeight-2, fg)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func toRGBA(c tcell.Color, fallback color.RGBA) color.RGBA {
	if c == tcell.ColorDefault {
		return fallback
	}
	r, g, b := c.RGB()
	if r < 0 || g < 0 || b < 0 {
		return fallback
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 0xff}
}

func colorName(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "default"
	}
	hex := c.Hex()
	if hex < 0 {
		return "default"
	}
	return fmt.Sprintf("#%06x", hex)
}

var attrLabels = []struct {
	mask tcell.AttrMask
	name string
}{
	{tcell.AttrBold, "bold"},
	{tcell.AttrBlink, "blink"},
	{tcell.AttrReverse, "reverse"},
	{tcell.AttrUnderline, "underline"},
	{tcell.AttrDim, "dim"},
	{tcell.AttrItalic, "italic"},
	{tcell.AttrStrikeThrough, "strikethrough"},
}

func attrNames(a tcell.AttrMask) string {
	var names []string
	for _, l := range attrLabels {
		if a&l.mask != 0 {
			names = append(names, l.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}
