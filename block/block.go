package block

import "github.com/sarchlab/bdcore/bdcoreerr"

// Block is the contract every node in a diagram satisfies: arity, kind,
// state dimension, and the lifecycle hooks a diagram drives blocks through.
//
// Implementations embed Base and override Output (and, for KindTransfer,
// Deriv/SetState/GetState via Stateful) with their own numerics; Base
// supplies the bookkeeping (id, name, per-evaluation input tracking, port
// linkage) every variant needs identically.
type Block interface {
	ID() int
	SetID(id int)

	Name() string
	SetName(name string)

	Kind() Kind
	NIn() int
	NOut() int
	NStates() int

	// InPortNames/OutPortNames/StateNamesList return the block's declared
	// per-port/per-state names, or nil if none were given.
	InPortNames() []string
	OutPortNames() []string
	StateNamesList() []string

	// Check verifies arity and any block-local constraint, returning a
	// bdcoreerr.BlockCheck error on violation (bdcoreerr.StateNames when
	// the declared state-name count disagrees with NStates).
	Check() error
	// Start runs once before the first evaluation of a simulation.
	Start() error
	// Done runs once after the last evaluation of a simulation.
	Done() error
	// Reset marks all inputs undefined and clears Updated, ready for the
	// next evaluation cycle.
	Reset()

	// Output computes this block's output vector at time t. A diagram calls
	// it on KindFunction blocks only once every input is defined; KindSource
	// and KindTransfer blocks are called at the start of a cycle, before any
	// of their inputs arrive.
	Output(t float64) ([]float64, error)
	// StepBlock runs once per completed evaluation cycle, after all
	// outputs have settled; meaningful for KindSink blocks.
	StepBlock() error

	// Inputs returns the latest received input values for this cycle.
	Inputs() []float64
	// SetInput stores value at input port p and reports whether every
	// input slot is now defined.
	SetInput(p int, value float64) bool
	// Updated reports whether every input slot is defined in the current
	// cycle.
	Updated() bool

	// InPort returns the wire driving input port p, or nil if unlinked.
	InPort(p int) *Wire
	// OutPort returns the (possibly empty) list of wires leaving output
	// port p.
	OutPort(p int) []*Wire
	// InitPorts (re)sizes the inport/outport tables to the block's arity;
	// called once at the start of port linking during compilation.
	InitPorts()
	// LinkIn assigns w as the driver of its own End.Port() input slot,
	// failing with bdcoreerr.DoubleDriver if already occupied.
	LinkIn(w *Wire) error
	// LinkOut appends w to the outport list for its own Start.Port().
	LinkOut(w *Wire) error
}

// PassthroughInport marks a subsystem sub-diagram's single inport
// pseudo-block: a source block whose Nth output port stands in for the
// subsystem's Nth external input. spliceSubsystem rewires every wire
// leaving it directly onto whatever drove the subsystem's own input, so
// it never survives into the flattened diagram. A sub-diagram must
// contain exactly one.
type PassthroughInport interface {
	Block
	IsSubsystemInport() bool
}

// PassthroughOutport is the outport counterpart of PassthroughInport: its
// Nth input port stands in for the subsystem's Nth external output. A
// sub-diagram must contain exactly one.
type PassthroughOutport interface {
	Block
	IsSubsystemOutport() bool
}

// TimedStep is implemented by a block (typically a recording sink) whose
// once-per-cycle StepBlock needs the current simulation time; a diagram
// prefers StepAt over StepBlock when a block implements both.
type TimedStep interface {
	Block
	StepAt(t float64) error
}

// Stateful is the extension contract for KindTransfer blocks.
type Stateful interface {
	Block
	// Deriv returns the time-derivative of this block's state. Only valid
	// once Updated() is true.
	Deriv() ([]float64, error)
	// SetState consumes the first NStates() elements of x and returns the
	// remainder, for the next transfer block in insertion order.
	SetState(x []float64) []float64
	// GetState returns the current state vector, length NStates().
	GetState() []float64
}

// Base implements the bookkeeping every Block shares: identity, arity,
// per-cycle input tracking and post-compile port linkage. Concrete block
// variants embed Base and override Output (and Stateful methods, for
// transfer blocks).
type Base struct {
	id   int
	name string
	kind Kind

	nin, nout, nstates int

	inPortNames  []string
	outPortNames []string
	stateNames   []string

	inputs   []float64
	received []bool
	updated  bool

	inports  []*Wire
	outports [][]*Wire
}

// NewBase constructs a Base with the given kind and arity. id/name are
// assigned later by the owning diagram.
func NewBase(kind Kind, nin, nout, nstates int) Base {
	b := Base{kind: kind, nin: nin, nout: nout, nstates: nstates}
	b.inputs = make([]float64, nin)
	b.received = make([]bool, nin)
	return b
}

func (b *Base) ID() int          { return b.id }
func (b *Base) SetID(id int)     { b.id = id }
func (b *Base) Name() string     { return b.name }
func (b *Base) SetName(n string) { b.name = n }
func (b *Base) Kind() Kind       { return b.kind }
func (b *Base) NIn() int         { return b.nin }
func (b *Base) NOut() int        { return b.nout }
func (b *Base) NStates() int     { return b.nstates }

func (b *Base) InPortNames() []string    { return b.inPortNames }
func (b *Base) OutPortNames() []string   { return b.outPortNames }
func (b *Base) StateNamesList() []string { return b.stateNames }

// SetInPortNames declares names for input ports 0..NIn()-1.
func (b *Base) SetInPortNames(names []string) { b.inPortNames = names }

// SetOutPortNames declares names for output ports 0..NOut()-1.
func (b *Base) SetOutPortNames(names []string) { b.outPortNames = names }

// SetStateNames declares names for states 0..NStates()-1.
func (b *Base) SetStateNames(names []string) { b.stateNames = names }

// Check verifies the universal arity constraint and that any declared
// per-port/state name lists match arity. Block variants with additional
// constraints call Base.Check first, then add their own.
func (b *Base) Check() error {
	if b.nin == 0 && b.nout == 0 {
		return bdcoreerr.New(bdcoreerr.BlockCheck, "no inputs or outputs specified").WithBlock(b.name)
	}
	if b.inPortNames != nil && len(b.inPortNames) != b.nin {
		return bdcoreerr.New(bdcoreerr.BlockCheck, "input port name count %d disagrees with nin %d", len(b.inPortNames), b.nin).WithBlock(b.name)
	}
	if b.outPortNames != nil && len(b.outPortNames) != b.nout {
		return bdcoreerr.New(bdcoreerr.BlockCheck, "output port name count %d disagrees with nout %d", len(b.outPortNames), b.nout).WithBlock(b.name)
	}
	if b.stateNames != nil && len(b.stateNames) != b.nstates {
		return bdcoreerr.New(bdcoreerr.StateNames, "state name count %d disagrees with nstates %d", len(b.stateNames), b.nstates).WithBlock(b.name)
	}
	return nil
}

// Start/Done/StepBlock default to no-ops; most blocks have no lifecycle
// side effects and override only what they need.
func (b *Base) Start() error      { return nil }
func (b *Base) Done() error       { return nil }
func (b *Base) StepBlock() error  { return nil }

// Reset marks all inputs undefined and Updated false, ready for the next
// evaluation cycle.
func (b *Base) Reset() {
	for i := range b.received {
		b.received[i] = false
		b.inputs[i] = 0
	}
	b.updated = false
}

func (b *Base) Inputs() []float64 { return b.inputs }
func (b *Base) Updated() bool     { return b.updated }

// SetInput stores value at input port p and reports whether the block's
// full input set is now defined.
func (b *Base) SetInput(p int, value float64) bool {
	b.inputs[p] = value
	b.received[p] = true
	complete := true
	for _, ok := range b.received {
		if !ok {
			complete = false
			break
		}
	}
	b.updated = complete
	return complete
}

// InitPorts (re)sizes the inport/outport tables to the block's arity.
func (b *Base) InitPorts() {
	b.inports = make([]*Wire, b.nin)
	b.outports = make([][]*Wire, b.nout)
}

func (b *Base) InPort(p int) *Wire    { return b.inports[p] }
func (b *Base) OutPort(p int) []*Wire { return b.outports[p] }

// LinkIn assigns w as the driver of its own End.Port() input slot.
func (b *Base) LinkIn(w *Wire) error {
	p := w.End.Port()
	if p < 0 || p >= len(b.inports) {
		return bdcoreerr.New(bdcoreerr.PortOutOfRange, "input port %d out of range [0,%d)", p, len(b.inports)).WithBlock(b.name).WithWire(w.Name)
	}
	if b.inports[p] != nil {
		return bdcoreerr.New(bdcoreerr.DoubleDriver, "input port %d already driven by wire %s", p, b.inports[p].Name).WithBlock(b.name).WithWire(w.Name)
	}
	b.inports[p] = w
	return nil
}

// LinkOut appends w to the outport list for its own Start.Port().
func (b *Base) LinkOut(w *Wire) error {
	p := w.Start.Port()
	if p < 0 || p >= len(b.outports) {
		return bdcoreerr.New(bdcoreerr.PortOutOfRange, "output port %d out of range [0,%d)", p, len(b.outports)).WithBlock(b.name).WithWire(w.Name)
	}
	b.outports[p] = append(b.outports[p], w)
	return nil
}
