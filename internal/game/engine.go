// internal/game/engine.go
//
// Game controller for a single match-grid session.
// Responsibilities:
//   - Build and shuffle the grid (each value 1..numPairs exactly twice).
//   - Reveal tiles two at a time, score matches, re-hide mismatches after the
//     reveal delay, flip animation and hide delay.
//   - Run the one-second countdown; pause/resume it on hover.
//   - Track state transitions: not started → running ⇄ paused → won/lost → replay.
//
// Notes:
//   - Every transition runs under c.mu; timer callbacks and input never interleave.
//   - The controller owns exactly one countdown handle and cancels it before
//     arming another.
//   - Delayed callbacks carry the epoch they were scheduled in. Reset and Close
//     bump the epoch so callbacks scheduled for replaced tiles are dropped.

package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Timing of the countdown and the mismatch path.
const (
	TickInterval = time.Second
	RevealDelay  = 1000 * time.Millisecond
	HideDelay    = 500 * time.Millisecond
)

// Controller owns all state of one game and mediates between input and a Surface.
type Controller struct {
	mu sync.Mutex

	opts     Options
	numPairs int
	surface  Surface
	anim     Animator
	clock    clock.Clock
	rng      *rand.Rand
	log      zerolog.Logger

	tiles      []Tile
	selected   []int
	score      int
	timeLeft   int
	started    bool
	paused     bool
	firstGame  bool
	outcome    Phase
	resolution Resolution
	closed     bool

	timer    *clock.Timer // countdown
	timerSeq uint64       // bumped whenever the countdown is stopped
	pending  *clock.Timer // next step of an in-flight mismatch
	epoch    uint64       // bumped on reset/close
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the countdown and mismatch delays.
func WithClock(c clock.Clock) Option { return func(g *Controller) { g.clock = c } }

// WithAnimator replaces the default FlipAnimation.
func WithAnimator(a Animator) Option { return func(g *Controller) { g.anim = a } }

// WithRand sets the random source used to shuffle the grid.
func WithRand(r *rand.Rand) Option { return func(g *Controller) { g.rng = r } }

// WithSeed shuffles the grid from a deterministic seed.
func WithSeed(seed int64) Option {
	return func(g *Controller) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(g *Controller) { g.log = l } }

// New validates opts, builds a controller and shows the start modal.
// A nil surface renders nothing.
func New(opts Options, surface Surface, options ...Option) (*Controller, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	if surface == nil {
		surface = nopSurface{}
	}
	c := &Controller{
		opts:       opts,
		numPairs:   opts.Width * opts.Height / 2,
		surface:    surface,
		clock:      clock.New(),
		log:        zerolog.Nop(),
		timeLeft:   opts.TimeLimit,
		firstGame:  true,
		outcome:    PhaseNotStarted,
		resolution: ResolutionIdle,
	}
	for _, o := range options {
		o(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.anim == nil {
		c.anim = FlipAnimation{Clock: c.clock, Duration: FlipDuration}
	}
	c.surface.ShowModal(ModalStart, true)
	return c, nil
}

// Options returns the configuration the controller was built with.
func (c *Controller) Options() Options { return c.opts }

// Begin is the start button: it hides the start modal and starts the first game.
// It does nothing once a game has been played; replay goes through Reset.
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.started || !c.firstGame {
		return
	}
	c.surface.ShowModal(ModalStart, false)
	c.startLocked()
}

// Start builds and shuffles the grid and starts the countdown.
// It is a no-op while a game is running and once one has ended; replay
// goes through Reset.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.outcome != PhaseNotStarted {
		return
	}
	c.startLocked()
}

func (c *Controller) startLocked() {
	if c.started {
		return
	}
	c.started = true
	c.firstGame = false
	c.outcome = PhaseNotStarted
	c.createGrid()
	c.populateGrid()
	c.startTimerLocked()
	c.log.Debug().Int("width", c.opts.Width).Int("height", c.opts.Height).
		Int("timeLimit", c.timeLeft).Msg("game started")
}

// createGrid lays out width*height hidden tiles with no value.
func (c *Controller) createGrid() {
	c.tiles = make([]Tile, c.opts.Width*c.opts.Height)
	for i := range c.tiles {
		c.tiles[i] = Tile{Index: i}
		c.surface.RenderTile(c.tiles[i].view())
	}
}

// populateGrid deals the shuffled pair values onto the tiles.
func (c *Controller) populateGrid() {
	values := GenerateValues(c.numPairs)
	c.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	for i := range c.tiles {
		c.tiles[i].Value = values[i]
	}
}

// GenerateValues returns 1,1,2,2,...,numPairs,numPairs.
func GenerateValues(numPairs int) []int {
	if numPairs <= 0 {
		return nil
	}
	values := make([]int, 0, numPairs*2)
	for v := 1; v <= numPairs; v++ {
		values = append(values, v, v)
	}
	return values
}

// SelectTile reveals tile i and resolves the pair once two are face up.
// Ignored unless a game is running and unpaused, the tile is hidden, and fewer
// than two tiles are already selected.
func (c *Controller) SelectTile(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started || c.paused {
		return
	}
	if i < 0 || i >= len(c.tiles) || len(c.selected) >= 2 {
		return
	}
	t := &c.tiles[i]
	if t.Revealed || t.Matched {
		return
	}
	t.Revealed = true
	c.surface.RenderTile(t.view())
	c.selected = append(c.selected, i)
	if len(c.selected) < 2 {
		return
	}

	a, b := &c.tiles[c.selected[0]], &c.tiles[c.selected[1]]
	if a.Value == b.Value {
		c.score += 2
		a.Matched, b.Matched = true, true
		c.surface.RenderTile(a.view())
		c.surface.RenderTile(b.view())
		c.selected = c.selected[:0]
		c.log.Debug().Int("value", a.Value).Int("score", c.score).Msg("pair matched")
		if c.score == len(c.tiles) {
			c.endLocked(true)
		}
		return
	}

	pair := [2]int{a.Index, b.Index}
	epoch := c.epoch
	c.resolution = ResolutionRevealed
	c.pending = c.clock.AfterFunc(RevealDelay, func() { c.flip(epoch, pair) })
}

// flip starts the animation once the reveal delay has passed.
// The animator runs outside the lock since it may call done synchronously.
func (c *Controller) flip(epoch uint64, pair [2]int) {
	c.mu.Lock()
	if epoch != c.epoch || c.resolution != ResolutionRevealed {
		c.mu.Unlock()
		return
	}
	c.resolution = ResolutionAnimating
	c.pending = nil
	views := []TileView{c.tiles[pair[0]].view(), c.tiles[pair[1]].view()}
	anim := c.anim
	c.mu.Unlock()

	anim.Flip(views, func() { c.afterFlip(epoch, pair) })
}

func (c *Controller) afterFlip(epoch uint64, pair [2]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.resolution != ResolutionAnimating {
		return
	}
	c.resolution = ResolutionHiding
	c.pending = c.clock.AfterFunc(HideDelay, func() { c.hide(epoch, pair) })
}

// hide turns a mismatched pair face down and frees the selection buffer.
func (c *Controller) hide(epoch uint64, pair [2]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.resolution != ResolutionHiding {
		return
	}
	for _, i := range pair {
		c.tiles[i].Revealed = false
		c.surface.RenderTile(c.tiles[i].view())
	}
	c.selected = c.selected[:0]
	c.resolution = ResolutionIdle
	c.pending = nil
}

// cancelPendingLocked drops any in-flight mismatch steps.
func (c *Controller) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.epoch++
	c.resolution = ResolutionIdle
}

// Pause stops the countdown without touching the remaining time.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started || c.paused {
		return
	}
	c.paused = true
	c.stopTimerLocked()
	c.log.Debug().Int("timeLeft", c.timeLeft).Msg("game paused")
}

// Resume restarts the countdown from the remaining time.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started || !c.paused {
		return
	}
	c.paused = false
	c.startTimerLocked()
	c.log.Debug().Int("timeLeft", c.timeLeft).Msg("game resumed")
}

// startTimerLocked renders the remaining time and arms the first tick.
// Start and resume share this path so both tick the same way.
func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()
	c.surface.RenderTimer(timerText(c.timeLeft))
	c.armTickLocked()
}

func (c *Controller) armTickLocked() {
	seq := c.timerSeq
	c.timer = c.clock.AfterFunc(TickInterval, func() { c.tick(seq) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
}

// tick decrements, renders, then ends the game on zero.
func (c *Controller) tick(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.timerSeq || !c.started || c.paused {
		return
	}
	c.timeLeft--
	c.surface.RenderTimer(timerText(c.timeLeft))
	if c.timeLeft <= 0 {
		c.timeLeft = 0
		c.endLocked(false)
		return
	}
	c.armTickLocked()
}

func timerText(n int) string { return fmt.Sprintf("Time: %d", n) }

// EndGame stops the countdown and shows the win or lose message with the
// replay action. It is a no-op when no game is running.
func (c *Controller) EndGame(isWin bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}
	c.endLocked(isWin)
}

func (c *Controller) endLocked(isWin bool) {
	c.stopTimerLocked()
	c.started = false
	c.paused = false
	msg := LoseMessage
	c.outcome = PhaseLost
	if isWin {
		msg = WinMessage
		c.outcome = PhaseWon
	}
	c.surface.RenderEndMessage(msg)
	c.surface.ShowModal(ModalEnd, true)
	c.log.Info().Bool("win", isWin).Int("score", c.score).Int("timeLeft", c.timeLeft).Msg("game over")
}

// Reset is the replay action: it clears the board, restores the configured
// score/selection/time and immediately starts a new game.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.cancelPendingLocked()
	c.started = false
	c.paused = false

	if c.firstGame {
		c.surface.ShowModal(ModalStart, false)
	}
	c.surface.ShowModal(ModalEnd, false)
	c.surface.RenderTimer("")
	c.surface.ClearBoard()

	c.tiles = nil
	c.selected = nil
	c.score = 0
	c.timeLeft = c.opts.TimeLimit
	c.outcome = PhaseNotStarted
	c.log.Debug().Msg("game reset")
	c.startLocked()
}

// Close stops every timer and turns all further calls into no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.cancelPendingLocked()
	c.started = false
	c.paused = false
	c.closed = true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Phase:      c.phaseLocked(),
		Resolution: c.resolution,
		Width:      c.opts.Width,
		Height:     c.opts.Height,
		Score:      c.score,
		TimeLeft:   c.timeLeft,
		FirstGame:  c.firstGame,
		Tiles:      append([]Tile(nil), c.tiles...),
		Selected:   append([]int(nil), c.selected...),
	}
	return s
}

func (c *Controller) phaseLocked() Phase {
	switch {
	case c.started && c.paused:
		return PhasePaused
	case c.started:
		return PhaseRunning
	default:
		return c.outcome
	}
}
