package blocklib

import (
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

func init() {
	registry.Register("INTEGRATOR", block.KindTransfer, func(p registry.Params) (block.Block, error) {
		return NewIntegrator(p.Float("x0", 0)), nil
	})
}

// Integrator is a single-state transfer block: output is the current
// state, and the state's derivative is simply the input.
type Integrator struct {
	block.TransferBase
}

// NewIntegrator returns an Integrator with the given initial state.
func NewIntegrator(x0 float64) *Integrator {
	return &Integrator{TransferBase: block.NewTransferBase(1, 1, []float64{x0})}
}

func (i *Integrator) Output(t float64) ([]float64, error) {
	return []float64{i.State()[0]}, nil
}

func (i *Integrator) Deriv() ([]float64, error) {
	return []float64{i.Inputs()[0]}, nil
}
