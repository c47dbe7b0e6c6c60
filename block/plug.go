package block

import "fmt"

// Selector picks one port, or a strided range of ports, on a block. A
// scalar selector has width 1; a range selector enumerates [Start, Stop)
// stepping by Stride (default 1), matching a Python half-open slice.
type Selector struct {
	Start, Stop, Stride int
	ranged              bool
}

// Index returns a scalar selector for a single port.
func Index(port int) Selector {
	return Selector{Start: port, Stop: port + 1, Stride: 1}
}

// Range returns a half-open [start, stop) selector, stepping by stride
// (default 1 when stride <= 0).
func Range(start, stop int, stride int) Selector {
	if stride <= 0 {
		stride = 1
	}
	return Selector{Start: start, Stop: stop, Stride: stride, ranged: true}
}

// IsRange reports whether the selector was built with Range rather than
// Index, even when it happens to enumerate a single port.
func (s Selector) IsRange() bool { return s.ranged }

// PortList enumerates the ports the selector picks out, in order.
func (s Selector) PortList() []int {
	stride := s.Stride
	if stride <= 0 {
		stride = 1
	}
	var ports []int
	for p := s.Start; p < s.Stop; p += stride {
		ports = append(ports, p)
	}
	return ports
}

// Width returns the number of ports the selector picks out.
func (s Selector) Width() int { return len(s.PortList()) }

// Tag marks which end of a wire a Plug is fixed to.
type Tag int

const (
	TagNone Tag = iota
	TagStart
	TagEnd
)

// Plug is a reference into a block plus a port selector: the (block,
// port-selector) pair from which wires and slices are built. BlockID
// indexes into the owning diagram's block list rather than holding a
// pointer. Flattening renumbers blocks and rebuilds the plugs of every
// wire it keeps; a plug held outside the diagram's wires keeps its old
// index.
type Plug struct {
	BlockID int
	Sel     Selector
	Tag     Tag
}

// NewPlug builds a bare, untagged plug for a block's port.
func NewPlug(blockID, port int) Plug {
	return Plug{BlockID: blockID, Sel: Index(port)}
}

// NewSlicePlug builds an untagged plug over a range of a block's ports.
func NewSlicePlug(blockID int, sel Selector) Plug {
	return Plug{BlockID: blockID, Sel: sel}
}

// Width returns the number of ports this plug selects.
func (p Plug) Width() int { return p.Sel.Width() }

// PortList enumerates the ports this plug selects, in order.
func (p Plug) PortList() []int { return p.Sel.PortList() }

// IsSlice reports whether the plug's selector is a range rather than a
// single index.
func (p Plug) IsSlice() bool { return p.Sel.IsRange() }

// Port returns the single port this plug designates. It panics if the
// plug's selector spans more than one port; callers must only use it on
// plugs known to be scalar, such as a Wire's endpoints after expansion.
func (p Plug) Port() int {
	list := p.PortList()
	if len(list) != 1 {
		panic("block: Port() called on a non-scalar plug")
	}
	return list[0]
}

// WithTag returns a copy of the plug tagged as a wire's start or end.
func (p Plug) WithTag(tag Tag) Plug {
	p.Tag = tag
	return p
}

// Wire is an edge from a source (output) plug to a sink (input) plug. A
// wire never bundles multiple ports: range-to-range and range-to-block
// connect() calls expand into one Wire per port pair at construction time.
type Wire struct {
	ID    int
	Name  string
	Start Plug // output-side endpoint, Tag == TagStart
	End   Plug // input-side endpoint, Tag == TagEnd
}

// Send writes value into dst's input at this wire's end port and reports
// whether dst's full input set is now defined.
func (w *Wire) Send(dst Block, value float64) bool {
	return dst.SetInput(w.End.Port(), value)
}

// FullName renders the wire the way diagnostics print it, e.g.
// "3[0] --> 5[1]".
func (w *Wire) FullName() string {
	return plugLabel(w.Start) + " --> " + plugLabel(w.End)
}

func plugLabel(p Plug) string {
	return fmt.Sprintf("%d[%d]", p.BlockID, p.Port())
}
