package tui

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchgrid/internal/game"
)

type fakeControls struct {
	mu    sync.Mutex
	calls []string
	tiles []int
}

func (f *fakeControls) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeControls) Begin()  { f.record("begin") }
func (f *fakeControls) Reset()  { f.record("reset") }
func (f *fakeControls) Pause()  { f.record("pause") }
func (f *fakeControls) Resume() { f.record("resume") }
func (f *fakeControls) Close()  { f.record("close") }
func (f *fakeControls) SelectTile(i int) {
	f.record("select")
	f.mu.Lock()
	f.tiles = append(f.tiles, i)
	f.mu.Unlock()
}

func newTestApp(t *testing.T, width, tiles int) (*App, *fakeControls) {
	t.Helper()
	r := NewRenderer(width, nil)
	for i := 0; i < tiles; i++ {
		r.RenderTile(game.TileView{Index: i})
	}
	ctrl := &fakeControls{}
	a := NewApp(r, ctrl, zerolog.Nop())
	t.Cleanup(a.Quit)
	return a, ctrl
}

// drain waits until every input queued so far has reached the controller.
func drain(t *testing.T, a *App) {
	t.Helper()
	flushed := make(chan struct{})
	a.dispatch(func() { close(flushed) })
	select {
	case <-flushed:
	case <-a.done:
	case <-time.After(time.Second):
		t.Fatal("task pipeline stalled")
	}
}

func (f *fakeControls) recorded() ([]string, []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), append([]int(nil), f.tiles...)
}

func key(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func move(x, y int) *tcell.EventMouse { return tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone) }

func TestApp_Keys(t *testing.T) {
	a, ctrl := newTestApp(t, 4, 16)

	assert.Nil(t, a.handleKey(key('s')))
	assert.Nil(t, a.handleKey(key('R')))
	ev := key('x')
	assert.Same(t, ev, a.handleKey(ev), "unbound keys pass through")
	assert.Nil(t, a.handleKey(key('q')))
	drain(t, a)

	calls, _ := ctrl.recorded()
	assert.Equal(t, []string{"begin", "reset", "close"}, calls)
}

func TestApp_HoverPausesAndResumes(t *testing.T) {
	a, ctrl := newTestApp(t, 4, 16)
	drawBoard(t, a.r)

	a.handleMouse(move(5, 1), tview.MouseMove)
	a.handleMouse(move(6, 2), tview.MouseMove)
	a.handleMouse(move(60, 20), tview.MouseMove)
	a.handleMouse(move(61, 20), tview.MouseMove)
	a.handleMouse(move(1, 0), tview.MouseMove)
	drain(t, a)

	calls, _ := ctrl.recorded()
	assert.Equal(t, []string{"resume", "pause", "resume"}, calls)
}

func TestApp_HoverKeepsOrderAgainstController(t *testing.T) {
	mock := clock.NewMock()
	r := NewRenderer(4, nil)
	c, err := game.New(game.Options{Width: 4, Height: 4}, r, game.WithClock(mock))
	require.NoError(t, err)
	a := NewApp(r, c, zerolog.Nop())
	t.Cleanup(a.Quit)
	drawBoard(t, a.r)

	a.handleKey(key('s'))
	for i := 0; i < 200; i++ {
		a.handleMouse(move(5, 1), tview.MouseMove)
		a.handleMouse(move(60, 20), tview.MouseMove)
		a.handleMouse(move(5, 1), tview.MouseMove)
		drain(t, a)
		require.Equal(t, game.PhaseRunning, c.Snapshot().Phase, "pointer on board after cycle %d", i)
	}

	a.handleMouse(move(60, 20), tview.MouseMove)
	a.handleMouse(move(5, 1), tview.MouseMove)
	a.handleMouse(move(60, 20), tview.MouseMove)
	drain(t, a)
	assert.Equal(t, game.PhasePaused, c.Snapshot().Phase, "pointer left the board last")
}

func TestApp_ClickSelectsTile(t *testing.T) {
	a, ctrl := newTestApp(t, 4, 16)
	drawBoard(t, a.r)
	a.hovering = true

	ev, action := a.handleMouse(tcell.NewEventMouse(5, 1, tcell.Button1, tcell.ModNone), tview.MouseLeftClick)
	assert.Nil(t, ev)
	assert.Zero(t, action)

	ev, action = a.handleMouse(tcell.NewEventMouse(1, 8, tcell.Button1, tcell.ModNone), tview.MouseLeftClick)
	assert.NotNil(t, ev, "clicks on empty rows pass through")
	assert.Equal(t, tview.MouseLeftClick, action)

	drain(t, a)
	_, tiles := ctrl.recorded()
	assert.Equal(t, []int{5}, tiles)
}

func TestApp_EnterSelectsHighlightedTile(t *testing.T) {
	a, ctrl := newTestApp(t, 4, 16)
	a.r.table.Select(1, 2)

	handler := a.r.table.InputHandler()
	require.NotNil(t, handler)
	handler(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	drain(t, a)

	_, tiles := ctrl.recorded()
	assert.Equal(t, []int{6}, tiles)
}
