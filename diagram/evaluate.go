package diagram

import (
	"math"
	"time"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

// Clock abstracts the wall-clock source RunRealtime paces itself
// against, so tests can drive it without depending on real elapsed time.
// wallClock{} is used when none is injected.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// SetClock injects a Clock for RunRealtime to use instead of the real
// wall clock.
func (d *Diagram) SetClock(c Clock) { d.clock = c }

// Evaluate runs one full propagation cycle: it resets every block, then
// scatters x into the transfer blocks' current state in insertion order,
// propagates source and transfer block outputs across the wire graph,
// verifies every block's inputs settled, and gathers each transfer
// block's derivative into the returned slice, in the same order x was
// consumed. t is passed through to every block's Output.
func (d *Diagram) Evaluate(x []float64, t float64) ([]float64, error) {
	if d.phase != PhaseCompiled && d.phase != PhaseRunning {
		return nil, bdcoreerr.New(bdcoreerr.EvaluationDryRun, "diagram %s must be Compiled or Running to evaluate, is %s", d.Name, d.phase)
	}

	for _, b := range d.blocks {
		b.Reset()
	}

	rest := x
	for _, b := range d.blocks {
		if b.Kind() != block.KindTransfer {
			continue
		}
		sb := b.(block.Stateful)
		rest = sb.SetState(rest)
	}

	d.t = t

	for _, b := range d.blocks {
		if b.Kind() == block.KindSource || b.Kind() == block.KindTransfer {
			if err := d.propagate(b, t, 0); err != nil {
				return nil, err
			}
		}
	}

	for _, b := range d.blocks {
		if b.NIn() > 0 && !b.Updated() {
			return nil, bdcoreerr.New(bdcoreerr.IncompleteInputs, "block %s still has undefined inputs after propagation", b.Name()).WithBlock(b.Name())
		}
	}

	deriv := make([]float64, 0, d.nstates)
	for _, b := range d.blocks {
		if b.Kind() != block.KindTransfer {
			continue
		}
		sb := b.(block.Stateful)
		dx, err := sb.Deriv()
		if err != nil {
			return nil, err
		}
		deriv = append(deriv, dx...)
	}

	return deriv, nil
}

// propagate computes b's output at time t and forwards each output value
// down every wire leaving it, recursing into the destination only when
// that send completed the destination's full input set AND the
// destination is a function or subsystem block -- a source or transfer
// block never re-fires mid-cycle, and a sink block has nothing downstream
// of it to drive.
func (d *Diagram) propagate(b block.Block, t float64, depth int) error {
	out, err := b.Output(t)
	if err != nil {
		return err
	}

	if d.CheckFinite {
		for _, v := range out {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return bdcoreerr.New(bdcoreerr.NonFinite, "block %s produced a non-finite output", b.Name()).WithBlock(b.Name())
			}
		}
	}

	for p, val := range out {
		for _, w := range b.OutPort(p) {
			dst := d.blocks[w.End.BlockID]
			complete := w.Send(dst, val)
			if complete && (dst.Kind() == block.KindFunction || dst.Kind() == block.KindSubsystem) {
				if err := d.propagate(dst, t, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// GetState gathers every transfer block's current state, in the same
// insertion order Evaluate consumes and produces state and derivative
// vectors in.
func (d *Diagram) GetState() []float64 {
	state := make([]float64, 0, d.nstates)
	for _, b := range d.blocks {
		if b.Kind() != block.KindTransfer {
			continue
		}
		sb := b.(block.Stateful)
		state = append(state, sb.GetState()...)
	}
	return state
}

// RunRealtime drives the diagram against a wall clock (or an injected
// Clock) until maxTime has elapsed or diagram.Stop is called, whichever
// comes first; maxTime <= 0 means no time cap, stop only. It refuses
// diagrams that contain any transfer block, since real-time execution
// has no integrator to advance their state. Each iteration's t is the
// actual elapsed wall time, not an accumulated step count, so GC pauses
// or slow blocks never let t drift from reality; per the single-threaded
// cooperative scheduling model, no operation here ever suspends, so the
// loop never sleeps between iterations.
func (d *Diagram) RunRealtime(maxTime time.Duration) error {
	if d.phase != PhaseCompiled {
		return bdcoreerr.New(bdcoreerr.SubsystemCompile, "diagram %s must be compiled before running", d.Name)
	}
	for _, b := range d.blocks {
		if b.Kind() == block.KindTransfer {
			return bdcoreerr.New(bdcoreerr.TransferInRealtime, "diagram %s contains transfer block %s; real-time execution requires a purely combinational diagram", d.Name, b.Name()).WithBlock(b.Name())
		}
	}

	clock := d.clock
	if clock == nil {
		clock = wallClock{}
	}

	if err := d.Start(); err != nil {
		return err
	}
	defer func() { _ = d.Done() }()

	start := clock.Now()
	for d.stop == nil {
		elapsed := clock.Now().Sub(start)
		if maxTime > 0 && elapsed >= maxTime {
			break
		}

		t := elapsed.Seconds()
		if _, err := d.Evaluate(nil, t); err != nil {
			return err
		}
		for _, b := range d.blocks {
			var err error
			if ts, ok := b.(block.TimedStep); ok {
				err = ts.StepAt(t)
			} else {
				err = b.StepBlock()
			}
			if err != nil {
				return err
			}
		}
	}

	return nil
}
