// internal/game/surface.go
//
// Collaborators the controller drives but does not own:
//   - Surface: renders tiles, timer text and modals.
//   - Animator: plays the flip effect between mismatch detection and re-hiding.
//
// Input wiring (clicks, hover, buttons) is the host's job; hosts call the
// controller's exported methods.

package game

import (
	"time"

	"github.com/benbjohnson/clock"
)

// FlipDuration is how long the default flip animation runs.
const FlipDuration = 400 * time.Millisecond

// Surface renders game state. Calls are serialized by the controller and must
// not call back into it synchronously.
type Surface interface {
	ShowModal(m Modal, visible bool)
	RenderTile(t TileView)
	RenderTimer(text string)
	RenderEndMessage(msg string)
	ClearBoard()
}

// Animator plays the flip effect on the given tiles and calls done when it
// finishes. done may be called from any goroutine, including synchronously.
type Animator interface {
	Flip(tiles []TileView, done func())
}

// FlipAnimation is a surface-agnostic Animator that just waits Duration.
type FlipAnimation struct {
	Clock    clock.Clock
	Duration time.Duration
}

// Flip schedules done after the animation duration.
func (f FlipAnimation) Flip(_ []TileView, done func()) {
	f.Clock.AfterFunc(f.Duration, done)
}

type nopSurface struct{}

func (nopSurface) ShowModal(Modal, bool) {}
func (nopSurface) RenderTile(TileView) {}
func (nopSurface) RenderTimer(string) {}
func (nopSurface) RenderEndMessage(string) {}
func (nopSurface) ClearBoard() {}
