package harness

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/ajramos/snapvariant/internal/variant"
)

// Content builds the primitive to capture. It receives the active variant so
// it can pick colors, locale-aware text and so on; the harness never
// inspects what it returns.
type Content func(v variant.Variant) tview.Primitive

// Static adapts a prebuilt primitive that does not depend on the variant
func Static(p tview.Primitive) Content {
	return func(variant.Variant) tview.Primitive { return p }
}

// themedFrame paints the variant background and draws the content inside it
type themedFrame struct {
	*tview.Box
	content tview.Primitive
}

// applyVariant wraps the content built for v in the variant's frame
func applyVariant(v variant.Variant, content Content) *themedFrame {
	box := tview.NewBox()
	box.SetBackgroundColor(v.Palette.Background.Color())

	var p tview.Primitive
	if content != nil {
		p = content(v)
	}
	return &themedFrame{Box: box, content: p}
}

func (f *themedFrame) Draw(screen tcell.Screen) {
	f.Box.DrawForSubclass(screen, f)
	if f.content == nil {
		return
	}
	x, y, w, h := f.GetInnerRect()
	f.content.SetRect(x, y, w, h)
	f.content.Draw(screen)
}
