package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchgrid/internal/game"
)

func TestFeed_RecordsView(t *testing.T) {
	f := New()
	f.ShowModal(game.ModalStart, true)
	f.RenderTile(game.TileView{Index: 2, Revealed: true, Value: 7})
	f.RenderTimer("Time: 12")

	v := f.View()
	assert.True(t, v.StartModal)
	require.Len(t, v.Tiles, 3)
	assert.Equal(t, game.TileView{Index: 0}, v.Tiles[0])
	assert.Equal(t, 7, v.Tiles[2].Value)
	assert.Equal(t, "Time: 12", v.Timer)

	f.ShowModal(game.ModalStart, false)
	f.ShowModal(game.ModalEnd, true)
	f.RenderEndMessage(game.WinMessage)
	f.ClearBoard()

	v = f.View()
	assert.False(t, v.StartModal)
	assert.True(t, v.EndModal)
	assert.Equal(t, game.WinMessage, v.EndMessage)
	assert.Empty(t, v.Tiles)
}

func TestFeed_ViewIsACopy(t *testing.T) {
	f := New()
	f.RenderTile(game.TileView{Index: 0})
	v := f.View()
	v.Tiles[0].Value = 99
	assert.Zero(t, f.View().Tiles[0].Value)
}

func TestFeed_SubscribeReceivesEvents(t *testing.T) {
	f := New()
	ch, cancel := f.Subscribe()
	defer cancel()

	f.RenderTimer("Time: 5")
	f.RenderTile(game.TileView{Index: 1, Revealed: true, Value: 3})

	ev := <-ch
	assert.Equal(t, EventTimer, ev.Type)
	assert.Equal(t, "Time: 5", ev.Timer)

	ev = <-ch
	assert.Equal(t, EventTile, ev.Type)
	require.NotNil(t, ev.Tile)
	assert.Equal(t, 3, ev.Tile.Value)
}

func TestFeed_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := New()
	_, cancel := f.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer*3; i++ {
		f.RenderTimer("Time: 1")
	}
	assert.Equal(t, "Time: 1", f.View().Timer)
}

func TestFeed_CancelAndClose(t *testing.T) {
	f := New()
	ch, cancel := f.Subscribe()
	assert.Equal(t, 1, f.Subscribers())
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, f.Subscribers())

	ch2, cancel2 := f.Subscribe()
	f.Close()
	_, ok = <-ch2
	assert.False(t, ok)
	cancel2()

	ch3, _ := f.Subscribe()
	_, ok = <-ch3
	assert.False(t, ok)
}

func TestFeed_DrivenByController(t *testing.T) {
	f := New()
	c, err := game.New(game.Options{Width: 2, Height: 1}, f, game.WithSeed(1))
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, f.View().StartModal)
	c.Begin()
	v := f.View()
	assert.False(t, v.StartModal)
	require.Len(t, v.Tiles, 2)
	assert.Equal(t, "Time: 60", v.Timer)

	c.SelectTile(0)
	c.SelectTile(1)
	v = f.View()
	assert.True(t, v.Tiles[0].Matched)
	assert.True(t, v.EndModal)
	assert.Equal(t, game.WinMessage, v.EndMessage)
}
