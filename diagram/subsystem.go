package diagram

import (
	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

// Subsystem is a first-class block.Kind, not a blocklib variant: it holds
// an embedded *Diagram, which block cannot reference without an import
// cycle. Compile's flatten step splices a Subsystem's inner diagram into
// its parent and removes the Subsystem block itself; a Subsystem that
// somehow survives to evaluation is a compiler defect, not a runtime
// state, so Output refuses to run.
type Subsystem struct {
	block.Base
	Inner *Diagram
}

// NewSubsystem wraps inner as a subsystem block of the given external
// arity. Subsystems carry no state of their own; any transfer blocks
// inside inner surface in the flattened parent's own state inventory.
func NewSubsystem(inner *Diagram, nin, nout int) *Subsystem {
	return &Subsystem{
		Base:  block.NewBase(block.KindSubsystem, nin, nout, 0),
		Inner: inner,
	}
}

// Output always fails: a compiled diagram never retains a Subsystem
// block, so reaching this means flatten was skipped or failed silently.
func (s *Subsystem) Output(t float64) ([]float64, error) {
	return nil, bdcoreerr.New(bdcoreerr.SubsystemCompile, "subsystem %s was not flattened before evaluation", s.Name()).WithBlock(s.Name())
}
