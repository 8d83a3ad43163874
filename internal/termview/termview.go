// Package termview draws entity positions read back from the device in a
// terminal.
package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/plus3/computecs/ecs"
)

// Point is one entity's position in world units.
type Point struct {
	Entity ecs.Entity
	X, Y   float32
}

// Bounds is the world rectangle mapped onto the screen.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float32
}

// View renders points into a tcell screen. The top row holds the title and
// the bottom row the status line; the rows in between show the world.
type View struct {
	screen tcell.Screen
	bounds Bounds
	glyph  string
	title  string
}

func New(screen tcell.Screen, bounds Bounds, glyph, title string) *View {
	if glyph == "" {
		glyph = "●"
	}
	return &View{screen: screen, bounds: bounds, glyph: glyph, title: title}
}

// Project maps a world position to a screen cell. Positions outside the
// bounds are not visible.
func (v *View) Project(x, y float32) (int, int, bool) {
	sw, sh := v.screen.Size()
	rows := sh - 2
	gw := runewidth.StringWidth(v.glyph)
	if rows <= 0 || sw < gw {
		return 0, 0, false
	}
	b := v.bounds
	if x < b.MinX || x >= b.MaxX || y < b.MinY || y >= b.MaxY {
		return 0, 0, false
	}

	cols := sw / gw
	cx := int((x - b.MinX) / (b.MaxX - b.MinX) * float32(cols))
	cy := int((y - b.MinY) / (b.MaxY - b.MinY) * float32(rows))
	return cx * gw, cy + 1, true
}

// Draw replaces the screen contents with points and status.
func (v *View) Draw(points []Point, status string) {
	v.screen.Clear()
	sw, sh := v.screen.Size()

	header := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	for x := 0; x < sw; x++ {
		v.screen.SetContent(x, 0, ' ', nil, header)
	}
	v.putText(0, 0, v.title, header)

	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for _, p := range points {
		if x, y, ok := v.Project(p.X, p.Y); ok {
			v.putGlyph(x, y, v.glyph, style)
		}
	}

	if sh > 1 {
		v.putText(0, sh-1, status, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	v.screen.Show()
}

// putText writes s starting at (x, y), clipped to the screen width.
func (v *View) putText(x, y int, s string, style tcell.Style) {
	sw, _ := v.screen.Size()
	for _, r := range runewidth.Truncate(s, sw-x, "…") {
		v.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y).
func (v *View) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	v.screen.SetContent(x, y, runes[0], runes[1:], style)
	if runewidth.StringWidth(glyph) == 2 {
		v.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

// Run redraws the view every interval with the result of frame until ctx
// is done, frame fails, or the user presses q, Esc or Ctrl-C. The caller
// owns the screen and must Fini it afterwards.
func (v *View) Run(ctx context.Context, interval time.Duration, frame func() ([]Point, string, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok && isQuit(key) {
				cancel()
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				v.screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		points, status, err := frame()
		if err != nil {
			return err
		}
		v.Draw(points, status)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
