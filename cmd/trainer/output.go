package main

import (
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/game"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type moveMsg struct {
	Marker string `json:"marker"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// frame is one move of one game, as sent to websocket clients.
type frame struct {
	Epoch  int        `json:"epoch"`
	Game   int        `json:"game"`
	Board  [][]string `json:"board"`
	Move   *moveMsg   `json:"move,omitempty"`
	Winner string     `json:"winner,omitempty"` // "x", "o" or "draw" once the game is over
}

func toFrame(ms game.MetaState) frame {
	grid := ms.Grid()
	f := frame{
		Epoch: ms.Epoch(),
		Game:  ms.GameNumber(),
		Board: make([][]string, len(grid)),
	}
	for i, row := range grid {
		f.Board[i] = make([]string, len(row))
		for j, m := range row {
			f.Board[i][j] = m.Glyph()
		}
	}
	if mv, ok := ms.LastMove(); ok {
		f.Move = &moveMsg{Marker: mv.Marker.Glyph(), Row: mv.Row, Col: mv.Col}
	}
	if ended, winner := ms.Winner(); ended {
		f.Winner = "draw"
		if winner != game.None {
			f.Winner = winner.Glyph()
		}
	}
	return f
}

// Encoder streams the arena's games to a websocket client. Encode never blocks
// training: frames that find the buffer full are dropped.
type Encoder struct {
	frames  chan frame
	done    chan struct{}
	once    sync.Once
	dropped int64
}

var upgrader = websocket.Upgrader{} // use default options

// NewEncoder buffers up to buffer frames for a slow or absent client.
func NewEncoder(buffer int) *Encoder {
	return &Encoder{
		frames: make(chan frame, buffer),
		done:   make(chan struct{}),
	}
}

func (enc *Encoder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket-upgrade-failed")
		return
	}
	defer c.Close()
	for {
		select {
		case f := <-enc.frames:
			if err = c.WriteJSON(f); err != nil {
				log.Debug().Err(err).Msg("websocket-write-failed")
				return
			}
		case <-enc.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "training done")
			_ = c.WriteMessage(websocket.CloseMessage, msg)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Encode a game
func (enc *Encoder) Encode(ms game.MetaState) error {
	select {
	case enc.frames <- toFrame(ms):
	default:
		atomic.AddInt64(&enc.dropped, 1)
	}
	return nil
}

// Flush ...
func (enc *Encoder) Flush() error { return nil }

// Close ends every stream.
func (enc *Encoder) Close() error {
	enc.once.Do(func() {
		close(enc.done)
		if n := atomic.LoadInt64(&enc.dropped); n > 0 {
			log.Info().Int64("dropped", n).Msg("websocket-frames-dropped")
		}
	})
	return nil
}

// multiEncoder sends every game to each of its encoders.
type multiEncoder []menace.OutputEncoder

func (m multiEncoder) Encode(ms game.MetaState) error {
	for _, enc := range m {
		if err := enc.Encode(ms); err != nil {
			return err
		}
	}
	return nil
}

func (m multiEncoder) Flush() error {
	for _, enc := range m {
		if err := enc.Flush(); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (m multiEncoder) Close() error {
	var first error
	for _, enc := range m {
		if c, ok := enc.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
