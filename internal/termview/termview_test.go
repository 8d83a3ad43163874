package termview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/computecs/internal/termview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimScreen(t *testing.T) tcell.Screen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, ss.Init())
	ss.SetSize(20, 12)
	t.Cleanup(ss.Fini)
	return ss
}

var world = termview.Bounds{MaxX: 10, MaxY: 10}

func cell(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestProject(t *testing.T) {
	v := termview.New(newSimScreen(t), world, "*", "")

	x, y, ok := v.Project(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)

	x, y, ok = v.Project(5, 5)
	require.True(t, ok)
	assert.Equal(t, 10, x)
	assert.Equal(t, 6, y)

	_, _, ok = v.Project(10, 0)
	assert.False(t, ok)
	_, _, ok = v.Project(-0.5, 3)
	assert.False(t, ok)
}

func TestProjectWideGlyph(t *testing.T) {
	v := termview.New(newSimScreen(t), world, "🚀", "")

	// two columns per cell
	x, _, ok := v.Project(9.9, 0)
	require.True(t, ok)
	assert.Equal(t, 18, x)
}

func TestDraw(t *testing.T) {
	screen := newSimScreen(t)
	v := termview.New(screen, world, "*", "a title much longer than the screen")

	v.Draw([]termview.Point{
		{Entity: 0, X: 5, Y: 5},
		{Entity: 1, X: 50, Y: 50},
	}, "frame 1")

	assert.Equal(t, '*', cell(screen, 10, 6))
	assert.Equal(t, 'a', cell(screen, 0, 0))
	assert.Equal(t, '…', cell(screen, 19, 0))
	assert.Equal(t, 'f', cell(screen, 0, 11))

	// the next frame starts from a clear screen
	v.Draw(nil, "")
	assert.Equal(t, ' ', cell(screen, 10, 6))
}

func TestRunStopsOnFrameError(t *testing.T) {
	v := termview.New(newSimScreen(t), world, "*", "")
	boom := errors.New("boom")

	calls := 0
	err := v.Run(context.Background(), time.Millisecond, func() ([]termview.Point, string, error) {
		calls++
		if calls == 3 {
			return nil, "", boom
		}
		return []termview.Point{{X: 1, Y: 1}}, "ok", nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRunQuitKey(t *testing.T) {
	screen := newSimScreen(t)
	v := termview.New(screen, world, "*", "")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	err := v.Run(context.Background(), time.Millisecond, func() ([]termview.Point, string, error) {
		return nil, "", nil
	})
	assert.NoError(t, err)
}

func TestRunContextDone(t *testing.T) {
	v := termview.New(newSimScreen(t), world, "*", "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := v.Run(ctx, time.Millisecond, func() ([]termview.Point, string, error) {
		return nil, "", nil
	})
	assert.NoError(t, err)
}
