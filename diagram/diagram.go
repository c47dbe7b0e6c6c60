// Package diagram is the graph container and compiler/evaluator: the
// counterpart of core.Core's builder-assembled, Tick-driven component, but
// synchronous and deterministic rather than event-scheduled. A Diagram is
// built by adding blocks and connecting plugs, compiled once, then
// evaluated repeatedly by a caller-driven integrator or by RunRealtime.
package diagram

import (
	"fmt"
	"strings"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/config"
	"github.com/sarchlab/bdcore/registry"
)

// Phase tracks where a Diagram sits in its Building -> Compiled -> Running
// -> Done lifecycle.
type Phase int

const (
	PhaseBuilding Phase = iota
	PhaseCompiled
	PhaseRunning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "Building"
	case PhaseCompiled:
		return "Compiled"
	case PhaseRunning:
		return "Running"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Diagram holds every block and wire of a (possibly nested) simulation
// graph, plus the bookkeeping compile produces: a name index, the flat
// state vector layout, and the compiled/running phase.
type Diagram struct {
	Name string
	Opts config.Options

	// CheckFinite rejects a NaN or infinite block output during
	// propagation; on by default, matching the reference behavior.
	CheckFinite bool

	blocks    []block.Block
	wires     []*block.Wire
	typeCount map[string]int

	nameIndex  map[string]int
	nstates    int
	stateNames []string

	phase Phase
	t     float64
	clock Clock
	stop  block.Block
}

// New returns an empty Diagram ready to have blocks added to it.
func New(opts config.Options) *Diagram {
	return &Diagram{
		Name:        opts.Name,
		Opts:        opts,
		CheckFinite: true,
		typeCount:   map[string]int{},
		nameIndex:   map[string]int{},
	}
}

// Phase reports the diagram's current lifecycle phase.
func (d *Diagram) Phase() Phase { return d.phase }

// Start transitions a compiled diagram into Running, running every
// block's Start hook once before the first Evaluate call. It is called
// automatically by RunRealtime, but a caller driving Evaluate directly
// (e.g. from an external integrator) must call it itself; evaluate is
// otherwise only valid while Compiled.
func (d *Diagram) Start() error {
	if d.phase != PhaseCompiled {
		return bdcoreerr.New(bdcoreerr.SubsystemCompile, "diagram %s must be compiled before starting", d.Name)
	}
	for _, b := range d.blocks {
		if err := b.Start(); err != nil {
			return err
		}
	}
	d.stop = nil
	d.phase = PhaseRunning
	return nil
}

// Done transitions a running diagram into Done, running every block's
// Done hook once after the last Evaluate call.
func (d *Diagram) Done() error {
	if d.phase != PhaseRunning {
		return bdcoreerr.New(bdcoreerr.SubsystemCompile, "diagram %s is not running", d.Name)
	}
	for _, b := range d.blocks {
		if err := b.Done(); err != nil {
			return err
		}
	}
	d.phase = PhaseDone
	return nil
}

// Stop requests that a running RunRealtime loop halt after its current
// iteration. b identifies the block that raised the request and has no
// other effect; a nil b clears a pending request.
func (d *Diagram) Stop(b block.Block) { d.stop = b }

// Blocks returns the diagram's blocks in insertion (post-flatten) order.
// Callers must not mutate the returned slice.
func (d *Diagram) Blocks() []block.Block { return d.blocks }

// Wires returns the diagram's wires. Callers must not mutate the returned
// slice.
func (d *Diagram) Wires() []*block.Wire { return d.wires }

// NStates returns the flat state-vector length established at compile.
func (d *Diagram) NStates() int { return d.nstates }

// StateNames returns the flat state-vector's per-element names,
// established at compile.
func (d *Diagram) StateNames() []string { return d.stateNames }

// Block looks up a block by its resolved, post-flatten name.
func (d *Diagram) Block(name string) (block.Block, bool) {
	i, ok := d.nameIndex[name]
	if !ok {
		return nil, false
	}
	return d.blocks[i], true
}

// Add registers b under the diagram, assigning it an id and, if name is
// empty, a default name of the form "{lowercased typeName}.{n}" where n is
// the count of previously added blocks of that type.
func (d *Diagram) Add(typeName string, b block.Block, name string) block.Block {
	if d.phase != PhaseBuilding {
		panic("diagram: cannot add a block once compilation has started")
	}

	id := len(d.blocks)
	b.SetID(id)

	if name == "" {
		n := d.typeCount[typeName]
		d.typeCount[typeName] = n + 1
		name = fmt.Sprintf("%s.%d", strings.ToLower(typeName), n)
	}
	b.SetName(name)

	d.blocks = append(d.blocks, b)
	return b
}

// New constructs a block of the given registered type through the
// registry and adds it to the diagram, generalizing the reference
// implementation's per-variant factory sugar into one entry point.
func (d *Diagram) New(typeName string, params registry.Params, name string) (block.Block, error) {
	factory, kind, err := registry.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	b, err := factory(params)
	if err != nil {
		return nil, err
	}
	if b.Kind() != kind {
		panic(fmt.Sprintf("diagram: block type %q registered under kind %s but factory built a %s block", typeName, kind, b.Kind()))
	}
	return d.Add(typeName, b, name), nil
}

// AddSubsystem splices inner in as a subsystem block, deriving the
// subsystem's external arity from inner's inport/outport pseudo-blocks.
func (d *Diagram) AddSubsystem(inner *Diagram, name string) (*Subsystem, error) {
	nin, nout, err := inner.externalArity()
	if err != nil {
		return nil, err
	}
	sub := NewSubsystem(inner, nin, nout)
	d.Add("SUBSYSTEM", sub, name)
	return sub, nil
}

// Port builds a scalar plug onto one of b's ports.
func (d *Diagram) Port(b block.Block, port int) block.Plug {
	return block.NewPlug(b.ID(), port)
}

// Slice builds a range plug over [start, stop) of b's ports, stepping by
// stride (default 1 when stride <= 0).
func (d *Diagram) Slice(b block.Block, start, stop, stride int) block.Plug {
	return block.NewSlicePlug(b.ID(), block.Range(start, stop, stride))
}

// Connect wires start to each of ends under a shared wire-group name,
// expanding slice plugs per the bundle rules: a slice start paired with a
// slice end requires equal width and produces one wire per paired port; a
// slice start paired with a scalar end requires the destination block's
// nin to equal the slice width and fans out one wire per source port into
// that block's inputs in order; a scalar start paired with a slice end is
// rejected with BundleWidth; anything else produces a single wire.
// start and each element of ends may be a block.Block (lifted to its port
// 0) or a block.Plug.
func (d *Diagram) Connect(name string, start interface{}, ends ...interface{}) error {
	for _, end := range ends {
		if err := d.connectOne(name, start, end); err != nil {
			return err
		}
	}
	return nil
}

func (d *Diagram) connectOne(name string, startRaw, endRaw interface{}) error {
	start, err := d.toPlug(startRaw)
	if err != nil {
		return err
	}
	end, err := d.toPlug(endRaw)
	if err != nil {
		return err
	}
	start.Tag = block.TagStart
	end.Tag = block.TagEnd

	switch {
	case start.IsSlice() && end.IsSlice():
		if start.Width() != end.Width() {
			return bdcoreerr.New(bdcoreerr.BundleWidth, "slice widths disagree: %d vs %d", start.Width(), end.Width()).WithWire(name)
		}
		sp, ep := start.PortList(), end.PortList()
		for i := range sp {
			d.addWire(start.BlockID, sp[i], end.BlockID, ep[i], name)
		}

	case start.IsSlice() && !end.IsSlice():
		dst := d.blocks[end.BlockID]
		if start.Width() != dst.NIn() {
			return bdcoreerr.New(bdcoreerr.BundleWidth, "slice width %d disagrees with %s's nin %d", start.Width(), dst.Name(), dst.NIn()).WithWire(name)
		}
		for inport, outport := range start.PortList() {
			d.addWire(start.BlockID, outport, end.BlockID, inport, name)
		}

	default:
		if end.IsSlice() {
			return bdcoreerr.New(bdcoreerr.BundleWidth, "a scalar source cannot drive a multi-port sink").WithWire(name)
		}
		d.addWire(start.BlockID, start.Port(), end.BlockID, end.Port(), name)
	}
	return nil
}

func (d *Diagram) toPlug(v interface{}) (block.Plug, error) {
	switch x := v.(type) {
	case block.Block:
		return block.NewPlug(x.ID(), 0), nil
	case block.Plug:
		return x, nil
	default:
		return block.Plug{}, bdcoreerr.New(bdcoreerr.BlockCheck, "connect argument must be a block.Block or block.Plug, got %T", v)
	}
}

func (d *Diagram) addWire(startBlockID, startPort, endBlockID, endPort int, name string) {
	w := &block.Wire{
		ID:    len(d.wires),
		Name:  name,
		Start: block.NewPlug(startBlockID, startPort).WithTag(block.TagStart),
		End:   block.NewPlug(endBlockID, endPort).WithTag(block.TagEnd),
	}
	d.wires = append(d.wires, w)
}

// externalArity locates this diagram's single inport and single outport
// pseudo-block and derives the subsystem's own nin/nout from their
// arity, for use when this diagram is spliced in as an inner diagram.
func (d *Diagram) externalArity() (nin, nout int, err error) {
	var in, out block.Block
	for _, b := range d.blocks {
		if _, ok := b.(block.PassthroughInport); ok {
			if in != nil {
				return 0, 0, bdcoreerr.New(bdcoreerr.SubsystemShape, "inner diagram %s has more than one inport pseudo-block", d.Name)
			}
			in = b
		}
		if _, ok := b.(block.PassthroughOutport); ok {
			if out != nil {
				return 0, 0, bdcoreerr.New(bdcoreerr.SubsystemShape, "inner diagram %s has more than one outport pseudo-block", d.Name)
			}
			out = b
		}
	}
	if in == nil {
		return 0, 0, bdcoreerr.New(bdcoreerr.SubsystemShape, "inner diagram %s has no inport pseudo-block", d.Name)
	}
	if out == nil {
		return 0, 0, bdcoreerr.New(bdcoreerr.SubsystemShape, "inner diagram %s has no outport pseudo-block", d.Name)
	}
	return in.NOut(), out.NIn(), nil
}
