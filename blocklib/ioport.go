package blocklib

import (
	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

// Inport is a subsystem sub-diagram's single inport pseudo-block: a
// source with no inputs of its own and one output port per external
// input the subsystem exposes. Diagram.Compile's flatten step rewires
// every wire leaving Inport directly onto whatever drove the matching
// external input, and Inport itself never survives into the flattened
// diagram. It is never registered with the registry, since it only
// makes sense when constructed directly while building a sub-diagram,
// and a sub-diagram may contain exactly one.
type Inport struct {
	block.Base
}

// NewInport returns the Inport pseudo-block exposing n external inputs
// as n output ports.
func NewInport(n int) *Inport {
	return &Inport{Base: block.NewBase(block.KindSource, 0, n, 0)}
}

// IsSubsystemInport implements block.PassthroughInport.
func (p *Inport) IsSubsystemInport() bool { return true }

// Output should never run: a correctly flattened diagram always removes
// Inport before evaluation begins.
func (p *Inport) Output(t float64) ([]float64, error) {
	return nil, bdcoreerr.New(bdcoreerr.SubsystemCompile, "inport pseudo-block %s was evaluated directly; flatten should have removed it", p.Name()).WithBlock(p.Name())
}

// Outport is the Inport counterpart: a sink with one input port per
// external output the subsystem exposes and no outputs of its own.
type Outport struct {
	block.Base
}

// NewOutport returns the Outport pseudo-block collecting n external
// outputs across n input ports.
func NewOutport(n int) *Outport {
	return &Outport{Base: block.NewBase(block.KindSink, n, 0, 0)}
}

// IsSubsystemOutport implements block.PassthroughOutport.
func (p *Outport) IsSubsystemOutport() bool { return true }

// Output should never run: a correctly flattened diagram always removes
// Outport before evaluation begins.
func (p *Outport) Output(t float64) ([]float64, error) {
	return nil, bdcoreerr.New(bdcoreerr.SubsystemCompile, "outport pseudo-block %s was evaluated directly; flatten should have removed it", p.Name()).WithBlock(p.Name())
}
