// Package dot draws a trained table as a graphviz graph. Every entry is a
// node labelled with its efficiency board and every move that leads from one
// entry to another is an edge.
package dot

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
)

type node struct {
	Key      string
	Occupied int
	rows     []string
}

func (n node) State() string { return strings.Join(n.rows, "<BR />") }

func newNode(e *table.Entry) node {
	rows := strings.Split(strings.TrimSuffix(e.EfficiencyBoard(), "\n"), "\n")
	for i := range rows {
		rows[i] = "⎢" + rows[i] + " ⎥"
	}
	return node{
		Key:      e.Key(),
		Occupied: strings.Count(e.Key(), "x") + strings.Count(e.Key(), "o"),
		rows:     rows,
	}
}

// successors lists the keys one move away from key, for either player.
func successors(key string) (retVal []string, moves []game.Coord) {
	for i := 0; i < len(key); i++ {
		if key[i:i+1] != ttt.Placeholder {
			continue
		}
		for _, m := range []game.Marker{game.Cross, game.Nought} {
			retVal = append(retVal, key[:i]+m.Glyph()+key[i+1:])
			moves = append(moves, game.Coord{Row: i / ttt.Size, Col: i % ttt.Size})
		}
	}
	return
}

// ToDot renders the table. depth limits the graph to entries with at most that
// many markers on the board. A negative depth draws everything.
func ToDot(t *table.Table, depth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}

	var buf bytes.Buffer
	var err error
	keep := func(key string) bool {
		if depth < 0 {
			return true
		}
		return strings.Count(key, ttt.Placeholder) >= ttt.MaxMoves-depth
	}
	t.Range(func(e *table.Entry) bool {
		if !keep(e.Key()) {
			return true
		}
		n := newNode(e)
		if err = tmpl.Execute(&buf, n); err != nil {
			err = errors.Wrapf(err, "Unable to render %q", n.Key)
			return false
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		buf.Reset()
		if err = g.AddNode("G", nodeID(n.Key), attrs); err != nil {
			err = errors.WithStack(err)
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}

	t.Range(func(e *table.Entry) bool {
		if !keep(e.Key()) {
			return true
		}
		keys, moves := successors(e.Key())
		for i, k := range keys {
			if _, ok := t.Get(k); !ok || !keep(k) {
				continue
			}
			attrs := map[string]string{"label": fmt.Sprintf("\"%v\"", moves[i])}
			if err = g.AddEdge(nodeID(e.Key()), nodeID(k), true, attrs); err != nil {
				err = errors.WithStack(err)
				return false
			}
		}
		return true
	})
	if err != nil {
		return "", err
	}
	return g.String(), nil
}

func nodeID(key string) string { return "k" + key }

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Key</TD><TD>{{.Key}}</TD></TR>
<TR><TD>Markers</TD><TD>{{.Occupied}}</TD></TR>
<TR><TD>Efficiency</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
