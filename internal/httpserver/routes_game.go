// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game.
//   - POST /game/new              → create a session (normal or daily board)
//   - GET  /game/{id}             → current state (hidden values masked)
//   - GET  /game/{id}/events      → server-sent events, one per render call
//   - POST /game/{id}/start       → start button
//   - POST /game/{id}/select      → tile click {"index": n}
//   - POST /game/{id}/pause       → pointer left the board
//   - POST /game/{id}/resume      → pointer entered the board
//   - POST /game/{id}/replay      → replay button
//
// All /game/{id} routes go through requireSession.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/robalobadob/matchgrid/internal/daily"
	"github.com/robalobadob/matchgrid/internal/feed"
	"github.com/robalobadob/matchgrid/internal/game"
	"github.com/robalobadob/matchgrid/internal/store"
)

const (
	modeNormal = "normal"
	modeDaily  = "daily"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.With(chimw.Timeout(handlerTimeout), jsonContentType).Post("/new", s.handleNewGame)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(handlerTimeout), jsonContentType)
				r.Get("/", s.handleState)
				r.Post("/start", s.action((*game.Controller).Begin))
				r.Post("/pause", s.action((*game.Controller).Pause))
				r.Post("/resume", s.action((*game.Controller).Resume))
				r.Post("/replay", s.action((*game.Controller).Reset))
				r.Post("/select", s.handleSelect)
			})
		})
	})
}

// -----------------------------------------------------------------------------
// /game/new

// newGameReq is the request payload for /game/new. Zero fields use the
// server's configured defaults; a daily game always uses them.
type newGameReq struct {
	Mode      string `json:"mode"` // "normal" | "daily"
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	TimeLimit int    `json:"timeLimit"`
}

// newGameRes is returned by /game/new.
type newGameRes struct {
	GameID string   `json:"gameId"`
	Token  string   `json:"token"`
	Mode   string   `json:"mode"`
	State  stateRes `json:"state"`
}

// handleNewGame creates a controller wired to a fresh feed, stores the
// session and issues its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = modeNormal
	}

	id := uuid.NewString()
	opts := s.cfg.Game
	gameOpts := []game.Option{
		game.WithClock(s.clock),
		game.WithLogger(s.log.With().Str("game", id).Str("mode", mode).Logger()),
	}
	switch mode {
	case modeNormal:
		if req.Width != 0 {
			opts.Width = req.Width
		}
		if req.Height != 0 {
			opts.Height = req.Height
		}
		if req.TimeLimit != 0 {
			opts.TimeLimit = req.TimeLimit
		}
	case modeDaily:
		gameOpts = append(gameOpts, game.WithSeed(daily.Seed(s.clock.Now(), s.cfg.DailySalt)))
	default:
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}

	f := feed.New()
	g, err := game.New(opts, f, gameOpts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := &store.Session{ID: id, Mode: mode, Game: g, Feed: f, CreatedAt: s.clock.Now()}
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		s.log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signSession(id)
	if err != nil {
		_ = s.store.Delete(r.Context(), id)
		s.log.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	s.log.Info().Str("game", id).Str("mode", mode).
		Int("width", g.Options().Width).Int("height", g.Options().Height).Msg("session created")

	_ = json.NewEncoder(w).Encode(newGameRes{GameID: id, Token: tok, Mode: mode, State: stateOf(sess)})
}

// -----------------------------------------------------------------------------
// state

// stateRes is the JSON view of a session.
type stateRes struct {
	GameID   string            `json:"gameId"`
	Phase    game.Phase        `json:"phase"`
	Score    int               `json:"score"`
	TimeLeft int               `json:"timeLeft"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Theme    map[string]string `json:"theme"`
	Board    feed.View         `json:"board"`
}

func stateOf(sess *store.Session) stateRes {
	snap := sess.Game.Snapshot()
	return stateRes{
		GameID:   sess.ID,
		Phase:    snap.Phase,
		Score:    snap.Score,
		TimeLeft: snap.TimeLeft,
		Width:    snap.Width,
		Height:   snap.Height,
		Theme:    sess.Game.Options().Theme,
		Board:    sess.Feed.View(),
	}
}

// handleState returns the session's current state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(stateOf(currentSession(r)))
}

// action adapts a no-argument controller method into a handler that replies
// with the resulting state.
func (s *Server) action(fn func(*game.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		fn(sess.Game)
		_ = json.NewEncoder(w).Encode(stateOf(sess))
	}
}

// selectReq is the request payload for /game/{id}/select.
type selectReq struct {
	Index *int `json:"index"`
}

// handleSelect reveals one tile.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := currentSession(r)
	sess.Game.SelectTile(*req.Index)
	_ = json.NewEncoder(w).Encode(stateOf(sess))
}

// -----------------------------------------------------------------------------
// /game/{id}/events

// snapshotEvent is the first message on every stream.
type snapshotEvent struct {
	Type  string   `json:"type"`
	State stateRes `json:"state"`
}

// handleEvents streams feed events as server-sent events until the client
// disconnects or the session is evicted.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}
	sess := currentSession(r)
	events, cancel := sess.Feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, snapshotEvent{Type: "snapshot", State: stateOf(sess)}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes v as one "data:" frame.
func writeEvent(w http.ResponseWriter, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}
