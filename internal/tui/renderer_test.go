package tui

import (
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchgrid/internal/game"
)

func (r *Renderer) cellText(i int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.table.GetCell(i/r.width, i%r.width)
	if c == nil {
		return ""
	}
	return c.Text
}

func (r *Renderer) modalVisible(m game.Modal) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible[string(m)]
}

func (r *Renderer) timerText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.GetText(true)
}

// drawBoard lays the table out at the top-left of a simulated screen.
func drawBoard(t *testing.T, r *Renderer) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	r.table.SetRect(0, 0, 40, 10)
	r.table.Draw(screen)
}

func TestRenderer_ControllerDrivesBoard(t *testing.T) {
	mock := clock.NewMock()
	r := NewRenderer(4, nil)
	c, err := game.New(game.Options{Width: 4, Height: 4, TimeLimit: 10}, r, game.WithClock(mock), game.WithSeed(1))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.True(t, r.modalVisible(game.ModalStart))
	c.Begin()
	assert.False(t, r.modalVisible(game.ModalStart))
	assert.Equal(t, "Time: 10", r.timerText())
	for i := 0; i < 16; i++ {
		assert.Equal(t, "  ? ", r.cellText(i), "tile %d", i)
	}

	c.SelectTile(5)
	want := c.Snapshot().Tiles[5].Value
	assert.Equal(t, fmt.Sprintf("%3d ", want), r.cellText(5))
}

func TestRenderer_EndModalAndClear(t *testing.T) {
	r := NewRenderer(2, nil)
	for i := 0; i < 4; i++ {
		r.RenderTile(game.TileView{Index: i})
	}
	r.RenderEndMessage(game.LoseMessage)
	r.ShowModal(game.ModalEnd, true)
	assert.True(t, r.modalVisible(game.ModalEnd))
	assert.Equal(t, 1, r.indexOf(0, 1))

	r.ClearBoard()
	assert.Equal(t, "", r.cellText(3))
	assert.Equal(t, -1, r.indexOf(0, 1), "no tiles after clear")

	r.ShowModal(game.ModalEnd, false)
	assert.False(t, r.modalVisible(game.ModalEnd))
}

func TestRenderer_TileColours(t *testing.T) {
	r := NewRenderer(2, map[string]string{"hidden": "red", "matched": "not-a-colour"})
	assert.Equal(t, tcell.ColorRed, r.colors.hidden)
	assert.Equal(t, tcell.ColorGold, r.colors.revealed)
	assert.Equal(t, tcell.ColorGreen, r.colors.matched)

	r.RenderTile(game.TileView{Index: 0})
	r.RenderTile(game.TileView{Index: 1, Value: 3, Revealed: true, Matched: true})
	assert.Equal(t, tcell.ColorRed, r.table.GetCell(0, 0).BackgroundColor)
	assert.Equal(t, "  3 ", r.cellText(1))
}

func TestRenderer_IndexAt(t *testing.T) {
	r := NewRenderer(4, nil)
	for i := 0; i < 16; i++ {
		r.RenderTile(game.TileView{Index: i})
	}
	drawBoard(t, r)

	assert.Equal(t, 0, r.indexAt(1, 0))
	assert.Equal(t, 0, r.indexAt(4, 0), "separator belongs to the left column")
	assert.Equal(t, 5, r.indexAt(5, 1))
	assert.Equal(t, 14, r.indexAt(13, 3))
	assert.Equal(t, 15, r.indexAt(16, 3))
	assert.Equal(t, -1, r.indexAt(21, 3), "right of the last column")
	assert.Equal(t, -1, r.indexAt(1, 7), "below the last row")
	assert.Equal(t, -1, r.indexAt(60, 1), "outside the board")
}
