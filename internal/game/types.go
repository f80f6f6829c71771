// internal/game/types.go
//
// Core type definitions for the match-grid game controller.
// Defines:
//   - Options: grid/time/theme configuration supplied once at construction.
//   - Tile: a single grid cell holding one value of a pair.
//   - Phase / Resolution: coarse session state and mismatch sub-state.
//   - TileView / Snapshot: read-only copies handed to surfaces and callers.

package game

import (
	"errors"
	"fmt"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultWidth     = 4
	DefaultHeight    = 4
	DefaultTimeLimit = 60

	// MaxTiles caps width*height.
	MaxTiles = 1024
)

var (
	ErrInvalidSize      = errors.New("width and height must be positive")
	ErrOddTiles         = errors.New("width*height must be even")
	ErrInvalidTimeLimit = errors.New("time limit must be positive")
	ErrTooManyTiles     = errors.New("too many tiles")
)

// Options configures a game. It is immutable once a controller is built.
type Options struct {
	Width     int               // tiles per row
	Height    int               // number of rows
	TimeLimit int               // countdown start, in seconds
	Theme     map[string]string // free-form presentation hints (font, colours)
}

// DefaultOptions returns the documented defaults: a 4x4 grid with 60 seconds.
func DefaultOptions() Options {
	return Options{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		TimeLimit: DefaultTimeLimit,
		Theme:     map[string]string{},
	}
}

// withDefaults fills zero fields with their defaults.
func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.TimeLimit == 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Theme == nil {
		o.Theme = map[string]string{}
	}
	return o
}

// Validate reports whether the options describe a playable grid.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%dx%d: %w", o.Width, o.Height, ErrInvalidSize)
	}
	if o.Width > MaxTiles/o.Height {
		return fmt.Errorf("%dx%d exceeds %d: %w", o.Width, o.Height, MaxTiles, ErrTooManyTiles)
	}
	if (o.Width*o.Height)%2 != 0 {
		return fmt.Errorf("%dx%d: %w", o.Width, o.Height, ErrOddTiles)
	}
	if o.TimeLimit <= 0 {
		return fmt.Errorf("%d: %w", o.TimeLimit, ErrInvalidTimeLimit)
	}
	return nil
}

// Tile holds the state of one grid cell.
type Tile struct {
	Index    int  // position in row-major order
	Value    int  // 1..numPairs; 0 until the grid is populated
	Revealed bool // face up (selected or matched)
	Matched  bool // part of a found pair
}

// view projects the tile for a surface. Hidden tiles display no value.
func (t Tile) view() TileView {
	v := TileView{Index: t.Index, Revealed: t.Revealed, Matched: t.Matched}
	if t.Revealed {
		v.Value = t.Value
	}
	return v
}

// TileView is what a surface needs to draw a tile.
type TileView struct {
	Index    int  `json:"index"`
	Value    int  `json:"value,omitempty"` // 0 renders as blank
	Revealed bool `json:"revealed"`
	Matched  bool `json:"matched"`
}

// Phase is the coarse state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhasePaused     Phase = "paused"
	PhaseWon        Phase = "won"
	PhaseLost       Phase = "lost"
)

// Resolution tracks the two-step mismatch transition:
// Revealed -> Animating -> Hiding -> Idle.
type Resolution string

const (
	ResolutionIdle      Resolution = "idle"
	ResolutionRevealed  Resolution = "revealed"
	ResolutionAnimating Resolution = "animating"
	ResolutionHiding    Resolution = "hiding"
)

// Modal identifies one of the two dialogs a surface shows.
type Modal string

const (
	ModalStart Modal = "start"
	ModalEnd   Modal = "end"
)

// End-of-game messages.
const (
	WinMessage  = "This is victory! Congratulations!"
	LoseMessage = "Unfortunately, the time is up. Don't be discouraged and try again"
)

// Snapshot is a point-in-time copy of a controller's state.
type Snapshot struct {
	Phase      Phase
	Resolution Resolution
	Width      int
	Height     int
	Score      int
	TimeLeft   int
	FirstGame  bool
	Tiles      []Tile
	Selected   []int
}
