package blocklib

import (
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

func init() {
	registry.Register("GAIN", block.KindFunction, func(p registry.Params) (block.Block, error) {
		return NewGain(p.Float("k", 1)), nil
	})
}

// Gain is a function block with one input and one output: output = k *
// input.
type Gain struct {
	block.Base
	k float64
}

// NewGain returns a Gain with the given scale factor.
func NewGain(k float64) *Gain {
	return &Gain{Base: block.NewBase(block.KindFunction, 1, 1, 0), k: k}
}

func (g *Gain) Output(t float64) ([]float64, error) {
	return []float64{g.k * g.Inputs()[0]}, nil
}
