package blocklib

import (
	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

func init() {
	registry.Register("SUM", block.KindFunction, func(p registry.Params) (block.Block, error) {
		return NewSum(p.String("signs", "++"))
	})
}

// Sum is a function block that adds or subtracts its inputs according to
// signs, a string of '+'/'-' characters, one per input, in port order.
type Sum struct {
	block.Base
	signs []float64
}

// NewSum returns a Sum block with one input per character of signs
// ('+' contributes +input, '-' contributes -input).
func NewSum(signs string) (*Sum, error) {
	if len(signs) == 0 {
		return nil, bdcoreerr.New(bdcoreerr.BlockCheck, "SUM requires at least one sign")
	}
	coeffs := make([]float64, len(signs))
	for i := 0; i < len(signs); i++ {
		switch signs[i] {
		case '+':
			coeffs[i] = 1
		case '-':
			coeffs[i] = -1
		default:
			return nil, bdcoreerr.New(bdcoreerr.BlockCheck, "SUM signs must be '+' or '-', got %q", signs[i])
		}
	}
	return &Sum{
		Base:  block.NewBase(block.KindFunction, len(signs), 1, 0),
		signs: coeffs,
	}, nil
}

func (s *Sum) Output(t float64) ([]float64, error) {
	total := 0.0
	for i, v := range s.Inputs() {
		total += s.signs[i] * v
	}
	return []float64{total}, nil
}
