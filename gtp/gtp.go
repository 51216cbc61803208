// Package gtp is a line based text protocol for playing against, and teaching,
// a menace engine. It borrows the framing of the Go Text Protocol: every
// command may be prefixed by a numeric id, and every response is "=" or "?"
// followed by the id, the payload and an empty line.
package gtp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Engine holds one game against a menace engine.
type Engine struct {
	board   *ttt.Board
	session *menace.Session
	engine  *menace.Engine

	known map[string]Command

	ch  chan string
	ret chan string

	// Save persists the trained table. The "save" command fails when it is nil.
	Save          func() error
	name, version string
	quit          bool
}

// New creates a protocol engine over e. A nil known uses StandardLib.
func New(e *menace.Engine, name, version string, known map[string]Command) *Engine {
	if known == nil {
		known = StandardLib()
	}
	retVal := &Engine{
		engine:  e,
		known:   known,
		name:    name,
		version: version,
	}
	retVal.reset()
	return retVal
}

func (e *Engine) reset() {
	e.board = ttt.New()
	e.session = menace.NewSession(e.name)
}

// Start serves commands sent on input until input is closed or "quit" is
// handled. output is closed when serving stops.
func (e *Engine) Start() (input chan<- string, output <-chan string) {
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

// Board is the current game.
func (e *Engine) Board() *ttt.Board { return e.board }

func (e *Engine) start() {
	defer close(e.ret)
	for cmd := range e.ch {
		resp, ok := e.Handle(cmd)
		if !ok {
			continue
		}
		e.ret <- resp
		if e.quit {
			return
		}
	}
}

// Handle runs one command line and returns the response. ok is false for lines
// holding no command, which get no response.
func (e *Engine) Handle(cmd string) (resp string, ok bool) {
	id, x, args, err := e.parse(cmd)
	if x == nil && err == nil {
		return "", false
	}
	if err != nil {
		return handleErr(id, err), true
	}
	id, result, err := x.Do(id, args, e)
	if err != nil {
		log.Debug().Err(err).Str("cmd", cmd).Msg("gtp-command-failed")
	}
	return handleResult(id, result, err), true
}

// Done reports whether "quit" has been handled.
func (e *Engine) Done() bool { return e.quit }

func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	cmd = preprocess(cmd)
	tokens := strings.Fields(cmd)
	if len(tokens) == 0 {
		return -1, nil, nil, nil
	}
	if id, err = strconv.Atoi(tokens[0]); err == nil {
		tokens = tokens[1:]
	} else {
		// the id is optional
		err = nil
		id = -1
	}

	if len(tokens) == 0 {
		return id, nil, nil, nil
	}

	var ok bool
	if x, ok = e.known[tokens[0]]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", tokens[0])
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

// preprocess drops comments and surrounding space.
func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	return strings.ToLower(strings.TrimSpace(a))
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
