// Package tui is a terminal front end for the match-grid controller:
// a Renderer that implements game.Surface with tview, and an App that turns
// key presses, clicks and pointer movement into controller calls.
package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

// Controls is the subset of *game.Controller the terminal drives.
type Controls interface {
	Begin()
	Reset()
	SelectTile(i int)
	Pause()
	Resume()
	Close()
}

// App owns the tview application and routes input to a controller.
type App struct {
	app      *tview.Application
	r        *Renderer
	ctrl     Controls
	log      zerolog.Logger
	hovering bool

	// tasks feeds controller calls, in input order, to one goroutine off the
	// UI loop; the controller renders while holding its lock.
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

const taskQueue = 64

// NewApp wires input handling for ctrl, which must render into r.
func NewApp(r *Renderer, ctrl Controls, log zerolog.Logger) *App {
	a := &App{
		app:   tview.NewApplication(),
		r:     r,
		ctrl:  ctrl,
		log:   log,
		tasks: make(chan func(), taskQueue),
		done:  make(chan struct{}),
	}
	go a.pipeline()
	a.app.SetRoot(r.Root(), true).EnableMouse(true)
	a.app.SetInputCapture(a.handleKey)
	a.app.SetMouseCapture(a.handleMouse)

	r.table.SetSelectedFunc(func(row, col int) {
		if i := r.indexOf(row, col); i >= 0 {
			a.dispatch(func() { ctrl.SelectTile(i) })
		}
	})
	r.start.SetDoneFunc(func(int, string) { a.dispatch(ctrl.Begin) })
	r.end.SetDoneFunc(func(int, string) { a.dispatch(ctrl.Reset) })
	return a
}

// Run blocks until the user quits.
func (a *App) Run() error {
	a.r.attach(a.app)
	return a.app.Run()
}

// Quit stops the controller, then the UI, then the task pipeline.
func (a *App) Quit() {
	a.dispatch(func() {
		a.ctrl.Close()
		a.app.Stop()
		a.stopOnce.Do(func() { close(a.done) })
	})
}

// dispatch queues fn behind every earlier input. It drops fn after Quit.
func (a *App) dispatch(fn func()) {
	select {
	case a.tasks <- fn:
	case <-a.done:
	}
}

func (a *App) pipeline() {
	for {
		select {
		case fn := <-a.tasks:
			fn()
		case <-a.done:
			return
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		a.Quit()
		return nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 's', 'S':
			a.dispatch(a.ctrl.Begin)
			return nil
		case 'r', 'R':
			a.dispatch(a.ctrl.Reset)
			return nil
		case 'q', 'Q':
			a.Quit()
			return nil
		}
	}
	return ev
}

// handleMouse pauses when the pointer leaves the board, resumes when it
// comes back, and selects the tile under a left click.
func (a *App) handleMouse(ev *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	x, y := ev.Position()
	inside := a.r.table.InRect(x, y)
	if inside != a.hovering {
		a.hovering = inside
		if inside {
			a.log.Debug().Msg("pointer entered board")
			a.dispatch(a.ctrl.Resume)
		} else {
			a.log.Debug().Msg("pointer left board")
			a.dispatch(a.ctrl.Pause)
		}
	}
	if action == tview.MouseLeftClick {
		if i := a.r.indexAt(x, y); i >= 0 {
			a.dispatch(func() { a.ctrl.SelectTile(i) })
			return nil, 0
		}
	}
	return ev, action
}
