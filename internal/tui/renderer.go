package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robalobadob/matchgrid/internal/game"
)

const (
	pageBoard = "board"
	pageStart = string(game.ModalStart)
	pageEnd   = string(game.ModalEnd)
)

// Renderer is a game.Surface drawing into tview primitives.
// Until it is attached to a running application, updates are applied in place.
type Renderer struct {
	mu  sync.Mutex
	app *tview.Application

	width    int
	colors   palette
	table    *tview.Table
	timer    *tview.TextView
	start    *tview.Modal
	end      *tview.Modal
	pages    *tview.Pages
	visible  map[string]bool
	rendered int
}

type palette struct {
	hidden, revealed, matched tcell.Color
}

func themePalette(theme map[string]string) palette {
	p := palette{hidden: tcell.ColorDarkSlateGray, revealed: tcell.ColorGold, matched: tcell.ColorGreen}
	if c := tcell.GetColor(theme["hidden"]); c != tcell.ColorDefault {
		p.hidden = c
	}
	if c := tcell.GetColor(theme["revealed"]); c != tcell.ColorDefault {
		p.revealed = c
	}
	if c := tcell.GetColor(theme["matched"]); c != tcell.ColorDefault {
		p.matched = c
	}
	return p
}

// NewRenderer lays out the timer, board and both modals for a grid width
// tiles wide. The terminal picks the font; theme colours are honoured.
func NewRenderer(width int, theme map[string]string) *Renderer {
	r := &Renderer{
		width:   width,
		colors:  themePalette(theme),
		table:   tview.NewTable(),
		timer:   tview.NewTextView(),
		start:   tview.NewModal().SetText("Find every pair before the time runs out.\nMove the mouse off the board to pause.").AddButtons([]string{"Start"}),
		end:     tview.NewModal().AddButtons([]string{"Play again"}),
		pages:   tview.NewPages(),
		visible: map[string]bool{},
	}
	r.table.SetSelectable(true, true)
	r.table.SetBorder(false)
	r.timer.SetTextAlign(tview.AlignCenter)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(r.timer, 1, 0, false).
		AddItem(r.table, 0, 1, true)
	layout.SetBorder(true).SetTitle(" match grid  [s]tart [r]eplay [q]uit ")

	r.pages.AddPage(pageBoard, layout, true, true)
	r.pages.AddPage(pageStart, r.start, false, false)
	r.pages.AddPage(pageEnd, r.end, false, false)
	return r
}

// Root is the primitive to hand to tview.Application.SetRoot.
func (r *Renderer) Root() tview.Primitive { return r.pages }

func (r *Renderer) attach(app *tview.Application) {
	r.mu.Lock()
	r.app = app
	r.mu.Unlock()
}

// update runs fn on the UI goroutine once attached, inline otherwise.
func (r *Renderer) update(fn func()) {
	r.mu.Lock()
	app := r.app
	if app == nil {
		defer r.mu.Unlock()
		fn()
		return
	}
	r.mu.Unlock()
	app.QueueUpdateDraw(fn)
}

// ShowModal toggles the start or end page.
func (r *Renderer) ShowModal(m game.Modal, visible bool) {
	name := string(m)
	r.update(func() {
		r.visible[name] = visible
		if visible {
			r.pages.ShowPage(name)
			return
		}
		r.pages.HidePage(name)
	})
}

// RenderTile draws tile t at row t.Index/width, column t.Index%width.
func (r *Renderer) RenderTile(t game.TileView) {
	if t.Index < 0 || r.width <= 0 {
		return
	}
	cell := tview.NewTableCell(tileText(t)).SetAlign(tview.AlignCenter)
	switch {
	case t.Matched:
		cell.SetBackgroundColor(r.colors.matched).SetTextColor(tcell.ColorBlack)
	case t.Revealed:
		cell.SetBackgroundColor(r.colors.revealed).SetTextColor(tcell.ColorBlack)
	default:
		cell.SetBackgroundColor(r.colors.hidden).SetTextColor(tcell.ColorWhite)
	}
	r.update(func() {
		r.table.SetCell(t.Index/r.width, t.Index%r.width, cell)
		if t.Index >= r.rendered {
			r.rendered = t.Index + 1
		}
	})
}

// cellWidth is the width of every tile's text; values stay below 1000
// since grids are capped at game.MaxTiles.
const cellWidth = 4

func tileText(t game.TileView) string {
	if t.Value == 0 {
		return "  ? "
	}
	return fmt.Sprintf("%3d ", t.Value)
}

// RenderTimer sets the line above the board.
func (r *Renderer) RenderTimer(text string) {
	r.update(func() { r.timer.SetText(text) })
}

// RenderEndMessage sets the end modal's text.
func (r *Renderer) RenderEndMessage(msg string) {
	r.update(func() { r.end.SetText(msg) })
}

// ClearBoard removes every tile.
func (r *Renderer) ClearBoard() {
	r.update(func() {
		r.table.Clear()
		r.rendered = 0
	})
}

// indexAt maps a screen position inside the board to a tile index, or -1.
func (r *Renderer) indexAt(x, y int) int {
	if !r.table.InRect(x, y) {
		return -1
	}
	rx, ry, _, _ := r.table.GetInnerRect()
	if x < rx || y < ry {
		return -1
	}
	rowOff, colOff := r.table.GetOffset()
	// Columns are cellWidth wide plus a one-cell separator, as tview lays
	// out a borderless table.
	return r.indexOf(y-ry+rowOff, (x-rx)/(cellWidth+1)+colOff)
}

func (r *Renderer) indexOf(row, col int) int {
	if row < 0 || col < 0 || col >= r.width {
		return -1
	}
	i := row*r.width + col
	if i >= r.rendered {
		return -1
	}
	return i
}
