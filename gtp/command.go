package gtp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/pkg/errors"
)

// Command is a protocol command.
type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

func protocolVersion(e *Engine) string { return "2" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }

func listCommands(e *Engine) string {
	cmds := make([]string, 0, len(e.known))
	for c := range e.known {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)
	return strings.Join(cmds, "\n")
}

func quit(e *Engine) string       { e.quit = true; return "" }
func clearBoard(e *Engine) string { e.reset(); return "" }
func showboard(e *Engine) string  { return fmt.Sprintf("\n%v", e.board) }

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[args[0]]; ok {
		return "true", nil
	}
	return "false", nil
}

func parseMarker(arg string) (game.Marker, error) {
	m, err := game.ParseMarker(arg)
	if err != nil {
		return game.None, err
	}
	if !m.IsPlayer() {
		return game.None, errors.Errorf("%q is not a player", arg)
	}
	return m, nil
}

func parseCoord(row, col string) (c game.Coord, err error) {
	if c.Row, err = strconv.Atoi(row); err != nil {
		return c, errors.WithMessage(err, "Unable to parse row")
	}
	if c.Col, err = strconv.Atoi(col); err != nil {
		return c, errors.WithMessage(err, "Unable to parse column")
	}
	return c, nil
}

// ended reports whether the game on b is over.
func ended(b *ttt.Board) bool {
	return b.Winner() != game.None || b.Occupied() == ttt.MaxMoves
}

// play places a marker for the other side: play <x|o> <row> <col>.
// When the move ends the game the engine, playing the other marker, learns from it.
func play(e *Engine, args []string) (string, error) {
	if len(args) < 3 {
		return "", errors.New("Not enough arguments for \"play\"")
	}
	m, err := parseMarker(args[0])
	if err != nil {
		return "", err
	}
	c, err := parseCoord(args[1], args[2])
	if err != nil {
		return "", err
	}
	if ended(e.board) {
		return "", errors.WithMessage(ttt.ErrFinished, "Unable to play")
	}
	next := e.board.Layout()
	if err = next.ApplyMove(c, m); err != nil {
		return "", err
	}
	e.board = next
	if ended(e.board) {
		if _, err = e.engine.AdvanceAndLearnAll(e.session, e.board, m.Opponent()); err != nil {
			return "", err
		}
	}
	return "", nil
}

// genmove asks the engine for a move: genmove <x|o>. The response is "row col".
func genmove(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"genmove\"")
	}
	m, err := parseMarker(args[0])
	if err != nil {
		return "", err
	}
	if ended(e.board) {
		return "", errors.WithMessage(ttt.ErrFinished, "Unable to generate a move")
	}
	step, err := e.engine.AdvanceAndLearnAll(e.session, e.board, m)
	if err != nil {
		return "", err
	}
	e.board = step.Board.Layout()
	if !step.Moved {
		return "", errors.New("No move generated")
	}
	return fmt.Sprintf("%d %d", step.Move.Row, step.Move.Col), nil
}

// finalResult is "x+", "o+", "draw", or "undecided".
func finalResult(e *Engine) string {
	if w := e.board.Winner(); w != game.None {
		return w.Glyph() + "+"
	}
	if e.board.Occupied() == ttt.MaxMoves {
		return "draw"
	}
	return "undecided"
}

// efficiency shows what the engine knows about the current board.
func efficiency(e *Engine, args []string) (string, error) {
	entry, ok := e.engine.Table().Get(e.board.Key())
	if !ok {
		return "", errors.Errorf("No entry for %q", e.board.Key())
	}
	return "\n" + strings.TrimSuffix(entry.EfficiencyBoard(), "\n"), nil
}

func modelSize(e *Engine) string { return strconv.Itoa(e.engine.Table().Len()) }

func save(e *Engine, args []string) (string, error) {
	if e.Save == nil {
		return "", errors.New("Unable to save. No table file configured")
	}
	return "", e.Save()
}

// StandardLib is the default command set.
func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             stdlib(quit),
		"clear_board":      stdlib(clearBoard),
		"showboard":        stdlib(showboard),
		"final_result":     stdlib(finalResult),
		"model_size":       stdlib(modelSize),

		"known_command": stdlib2(knownCommand),
		"play":          stdlib2(play),
		"genmove":       stdlib2(genmove),
		"efficiency":    stdlib2(efficiency),
		"save":          stdlib2(save),
	}
}
