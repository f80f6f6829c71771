// internal/feed/feed.go
//
// Browser-facing presentation surface.
// Responsibilities:
//   - Implement game.Surface by keeping a materialized board view
//     (tiles, timer text, modal visibility, end message).
//   - Fan every render call out to subscribers as JSON-friendly events,
//     consumed by the HTTP server's server-sent-events stream.
//
// Notes:
//   - Publishing never blocks the controller: a subscriber whose buffer is full
//     misses the event and is expected to refetch the view.
//   - View() is what GET /game/{id} returns; hidden tiles never carry a value.

package feed

import (
	"sync"

	"github.com/robalobadob/matchgrid/internal/game"
)

// Event types emitted by a Feed.
const (
	EventTile    = "tile"
	EventTimer   = "timer"
	EventModal   = "modal"
	EventMessage = "message"
	EventClear   = "clear"
)

// subscriberBuffer is how many events a slow subscriber may lag behind.
const subscriberBuffer = 64

// Event is one render call, as sent to the browser.
type Event struct {
	Type    string         `json:"type"`
	Tile    *game.TileView `json:"tile,omitempty"`
	Timer   string         `json:"timer,omitempty"`
	Modal   game.Modal     `json:"modal,omitempty"`
	Visible bool           `json:"visible,omitempty"`
	Message string         `json:"message,omitempty"`
}

// View is the current board as last rendered.
type View struct {
	Tiles      []game.TileView `json:"tiles"`
	Timer      string          `json:"timer"`
	StartModal bool            `json:"startModal"`
	EndModal   bool            `json:"endModal"`
	EndMessage string          `json:"endMessage"`
}

// Feed is a game.Surface that records state and broadcasts changes.
type Feed struct {
	mu     sync.RWMutex       // guards view and subs
	view   View               // last rendered state
	subs   map[int]chan Event // keyed by subscription id
	nextID int
	closed bool
}

// New returns an empty feed.
func New() *Feed {
	return &Feed{subs: make(map[int]chan Event)}
}

// ShowModal records modal visibility.
func (f *Feed) ShowModal(m game.Modal, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m {
	case game.ModalStart:
		f.view.StartModal = visible
	case game.ModalEnd:
		f.view.EndModal = visible
	}
	f.publishLocked(Event{Type: EventModal, Modal: m, Visible: visible})
}

// RenderTile records the tile, growing the board as needed.
func (f *Feed) RenderTile(t game.TileView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Index < 0 {
		return
	}
	for len(f.view.Tiles) <= t.Index {
		f.view.Tiles = append(f.view.Tiles, game.TileView{Index: len(f.view.Tiles)})
	}
	f.view.Tiles[t.Index] = t
	f.publishLocked(Event{Type: EventTile, Tile: &t})
}

// RenderTimer records the timer text.
func (f *Feed) RenderTimer(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Timer = text
	f.publishLocked(Event{Type: EventTimer, Timer: text})
}

// RenderEndMessage records the end-of-game message.
func (f *Feed) RenderEndMessage(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.EndMessage = msg
	f.publishLocked(Event{Type: EventMessage, Message: msg})
}

// ClearBoard drops every tile.
func (f *Feed) ClearBoard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Tiles = nil
	f.publishLocked(Event{Type: EventClear})
}

func (f *Feed) publishLocked(ev Event) {
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// View returns a copy of the current board.
func (f *Feed) View() View {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v := f.view
	v.Tiles = append([]game.TileView{}, f.view.Tiles...)
	return v
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; the channel is closed by cancel or Close.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers reports how many listeners are attached.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close ends every subscription; later Subscribe calls get a closed channel.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
