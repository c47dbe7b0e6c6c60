package blocklib

import (
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

func init() {
	registry.Register("SCOPE", block.KindSink, func(p registry.Params) (block.Block, error) {
		return NewScope(p.Int("nin", 1)), nil
	})
}

// Sample is one recorded Scope observation.
type Sample struct {
	T      float64
	Values []float64
}

// Scope is a sink block that records every settled input vector into an
// in-memory history, standing in for the reference implementation's
// plotting backend so tests can assert on recorded trajectories directly.
type Scope struct {
	block.Base
	history []Sample
}

// NewScope returns a Scope recording nin channels.
func NewScope(nin int) *Scope {
	return &Scope{Base: block.NewBase(block.KindSink, nin, 0, 0)}
}

func (s *Scope) Output(t float64) ([]float64, error) { return nil, nil }

// StepAt appends the current input vector to the history, tagged with t.
func (s *Scope) StepAt(t float64) error {
	s.history = append(s.history, Sample{T: t, Values: append([]float64(nil), s.Inputs()...)})
	return nil
}

// History returns every sample recorded so far, oldest first.
func (s *Scope) History() []Sample { return s.history }
