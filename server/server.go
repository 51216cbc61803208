// Package server exposes a menace engine over HTTP: play against it, watch it
// learn, and move its table in and out.
package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

const maxUpload = 32 << 20

// Server routes the game endpoints to an engine. Every game in flight has its
// own session, found by its game id.
type Server struct {
	engine   *menace.Engine
	sessions *menace.SessionStore
	router   chi.Router

	// Now stamps downloaded tables.
	Now func() time.Time
}

// New creates a server for e.
func New(e *menace.Engine) *Server {
	s := &Server{
		engine:   e,
		sessions: menace.NewSessionStore(),
		Now:      time.Now,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/tictactoe", func(r chi.Router) {
		r.Get("/newGameState", s.newGame)
		r.Post("/moveAndLearn", s.moveAndLearn)
		r.Get("/downloadModel", s.downloadModel)
		r.Post("/loadModel", s.loadModel)
		r.Get("/trainedModelEfficiency", s.efficiency)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Sessions is the number of games in flight.
func (s *Server) Sessions() int { return s.sessions.Len() }

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http-request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func newGameID() string { return hex.EncodeToString(frand.Bytes(8)) }

func (s *Server) newGame(w http.ResponseWriter, r *http.Request) {
	info := GameInfo{
		GameState: GameState{Matrix: [][]string{{"", "", ""}, {"", "", ""}, {"", "", ""}}},
		ModelSize: s.engine.Table().Len(),
		GameID:    newGameID(),
	}
	writeJSON(w, http.StatusOK, info)
}

// moveParams reads userFigure, userMoveRow, userMoveCol and gameId. The move is
// optional so that the engine can open a game. The game id is required: it
// keeps the history of each game apart.
func moveParams(r *http.Request) (user game.Marker, c game.Coord, moved bool, id string, err error) {
	q := r.URL.Query()
	if user, err = game.ParseMarker(q.Get("userFigure")); err != nil {
		return
	}
	if !user.IsPlayer() {
		err = errors.New("userFigure must be x or o")
		return
	}
	row, col := q.Get("userMoveRow"), q.Get("userMoveCol")
	if row != "" || col != "" {
		if c.Row, err = strconv.Atoi(row); err != nil {
			err = errors.WithMessage(err, "Unable to parse userMoveRow")
			return
		}
		if c.Col, err = strconv.Atoi(col); err != nil {
			err = errors.WithMessage(err, "Unable to parse userMoveCol")
			return
		}
		moved = true
	}
	if id = strings.TrimSpace(q.Get("gameId")); id == "" {
		err = errors.New("gameId is required")
	}
	return
}

func (s *Server) moveAndLearn(w http.ResponseWriter, r *http.Request) {
	user, c, moved, id, err := moveParams(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	var gs GameState
	if err = json.NewDecoder(r.Body).Decode(&gs); err != nil {
		writeErr(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	b, err := gs.board()
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if moved {
		if b.Winner() != game.None {
			writeErr(w, http.StatusBadRequest, errors.New("game is over"))
			return
		}
		if err = b.ApplyMove(c, user); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
	}

	step, err := s.engine.AdvanceAndLearnAll(s.sessions.Get(id), b, user.Opponent())
	if err != nil {
		log.Error().Err(err).Str("game", id).Msg("move-and-learn-failed")
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if step.Result.Decided() {
		s.sessions.Delete(id)
	}

	out := newGameState(step.Board)
	out.setResult(step.Result)
	if step.Moved {
		out.ComputerMove = &Move{Row: step.Move.Row, Col: step.Move.Col}
	}
	writeJSON(w, http.StatusOK, GameInfo{
		GameState: out,
		ModelSize: s.engine.Table().Len(),
		GameID:    id,
	})
}

// ModelFilename names a downloaded table.
func ModelFilename(t time.Time) string { return t.Format("20060102-1504") + "_model.gmf" }

func (s *Server) downloadModel(w http.ResponseWriter, r *http.Request) {
	blob, err := table.Marshal(s.engine.Table())
	if err != nil {
		log.Error().Err(err).Msg("table-encode-failed")
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ModelFilename(s.Now())))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (s *Server) loadModel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "File is empty!", http.StatusExpectationFailed)
		return
	}
	f, hdr, err := r.FormFile("modelFile")
	if err != nil {
		http.Error(w, "File is empty!", http.StatusExpectationFailed)
		return
	}
	defer f.Close()
	if hdr.Size == 0 {
		http.Error(w, fmt.Sprintf("File is empty: %s!", hdr.Filename), http.StatusExpectationFailed)
		return
	}

	tbl, err := table.Decode(f)
	if err != nil {
		log.Warn().Err(err).Str("file", hdr.Filename).Msg("table-upload-rejected")
		http.Error(w, fmt.Sprintf("Error occurred when deserializing game model from file: %s!", hdr.Filename), http.StatusExpectationFailed)
		return
	}
	s.engine.Table().Replace(tbl)
	log.Info().Str("file", hdr.Filename).Int("entries", tbl.Len()).Msg("table-uploaded")
	fmt.Fprintf(w, "You successfully uploaded %s!", hdr.Filename)
}

func (s *Server) efficiency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Table().Report())
}
