// Package report renders a compiled diagram's block and wire tables, the
// Go-native counterpart of the reference implementation's ANSITable-based
// report(): a quick structural summary a user reads on a terminal rather
// than a plotted trace.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/diagram"
)

// Blocks writes one row per block: id, name, kind, arity and state count.
func Blocks(w io.Writer, d *diagram.Diagram) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"id", "name", "kind", "nin", "nout", "nstates"})
	for _, b := range d.Blocks() {
		t.AppendRow(table.Row{b.ID(), b.Name(), b.Kind(), b.NIn(), b.NOut(), b.NStates()})
	}
	t.Render()
}

// Wires writes one row per wire: name, source plug, destination plug.
func Wires(w io.Writer, d *diagram.Diagram) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"name", "start", "end"})
	for _, wire := range d.Wires() {
		t.AppendRow(table.Row{wire.Name, blockLabel(d, wire.Start), blockLabel(d, wire.End)})
	}
	t.Render()
}

// States writes one row per flat-state-vector entry, in Evaluate's
// gather/scatter order.
func States(w io.Writer, d *diagram.Diagram, x []float64) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"index", "name", "value"})
	names := d.StateNames()
	for i := range names {
		var v interface{}
		if i < len(x) {
			v = x[i]
		}
		t.AppendRow(table.Row{i, names[i], v})
	}
	t.Render()
}

func blockLabel(d *diagram.Diagram, p block.Plug) string {
	blocks := d.Blocks()
	if p.BlockID < 0 || p.BlockID >= len(blocks) {
		return "?"
	}
	return fmt.Sprintf("%s[%d]", blocks[p.BlockID].Name(), p.Port())
}
