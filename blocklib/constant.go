// Package blocklib is the reference block library: the variant catalog
// Diagram.New dispatches through the registry package, playing the role
// bdsim's blocks/ package plays for its built-in block types. Every
// variant registers itself from an init() and also exposes a plain Go
// constructor for direct, registry-free use.
package blocklib

import (
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

func init() {
	registry.Register("CONSTANT", block.KindSource, func(p registry.Params) (block.Block, error) {
		return NewConstant(p.Floats("value")), nil
	})
}

// Constant is a source block that outputs a fixed vector on every
// evaluation, regardless of t.
type Constant struct {
	block.Base
	value []float64
}

// NewConstant returns a Constant emitting value on each of its output
// ports, one port per element.
func NewConstant(value []float64) *Constant {
	if len(value) == 0 {
		value = []float64{0}
	}
	return &Constant{
		Base:  block.NewBase(block.KindSource, 0, len(value), 0),
		value: append([]float64(nil), value...),
	}
}

func (c *Constant) Output(t float64) ([]float64, error) {
	return c.value, nil
}
