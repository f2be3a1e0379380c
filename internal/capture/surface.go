package capture

import (
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"
)

// Surface is an off-screen tcell screen content is drawn onto.
// A Surface is not safe for concurrent use; create one per invocation.
type Surface struct {
	screen tcell.SimulationScreen
	width  int
	height int
}

// NewSurface creates a simulation screen of width x height cells
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init simulation screen: %w", err)
	}
	screen.SetSize(width, height)

	return &Surface{
		screen: screen,
		width:  width,
		height: height,
	}, nil
}

// Size returns the surface size in cells
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Render draws p over the whole surface and captures the result
func (s *Surface) Render(p tview.Primitive) *Snapshot {
	s.screen.Clear()
	p.SetRect(0, 0, s.width, s.height)
	p.Draw(s.screen)
	s.screen.Show()
	return s.capture()
}

// capture reads the cell buffer back into a Snapshot
func (s *Surface) capture() *Snapshot {
	shot := &Snapshot{
		Width:  s.width,
		Height: s.height,
		Cells:  make([]Cell, 0, s.width*s.height),
	}

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			mainc, combc, style, _ := s.screen.GetContent(x, y)
			fg, bg, attrs := style.Decompose()

			text := " "
			if mainc != 0 {
				text = string(append([]rune{mainc}, combc...))
			}
			shot.Cells = append(shot.Cells, Cell{
				Text:  text,
				Width: runewidth.StringWidth(text),
				Style: Style{Fg: fg, Bg: bg, Attrs: attrs},
			})
		}
	}
	return shot
}

// Close releases the screen
func (s *Surface) Close() {
	s.screen.Fini()
}
