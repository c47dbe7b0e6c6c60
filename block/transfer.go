package block

import "github.com/sarchlab/bdcore/bdcoreerr"

// TransferBase extends Base with the state-vector bookkeeping every
// KindTransfer block needs: an initial state, consuming/returning slices of
// the diagram's flat state vector, and restoring the initial state on
// Reset. Variants embed TransferBase and implement Deriv themselves.
type TransferBase struct {
	Base
	x0 []float64
	x  []float64
}

// NewTransferBase constructs a TransferBase with the given initial state;
// NStates is derived from len(x0).
func NewTransferBase(nin, nout int, x0 []float64) TransferBase {
	t := TransferBase{Base: NewBase(KindTransfer, nin, nout, len(x0))}
	t.x0 = append([]float64(nil), x0...)
	t.x = append([]float64(nil), x0...)
	return t
}

// Check verifies the initial-state length in addition to Base's checks.
func (t *TransferBase) Check() error {
	if err := t.Base.Check(); err != nil {
		return err
	}
	if len(t.x0) != t.NStates() {
		return bdcoreerr.New(bdcoreerr.BlockCheck, "initial state length %d disagrees with nstates %d", len(t.x0), t.NStates()).WithBlock(t.Name())
	}
	return nil
}

// Reset restores the current state to the initial state in addition to
// Base's input-clearing behavior.
func (t *TransferBase) Reset() {
	t.Base.Reset()
	t.x = append([]float64(nil), t.x0...)
}

// SetState consumes the first NStates() elements of x into the block's
// current state and returns the remainder.
func (t *TransferBase) SetState(x []float64) []float64 {
	n := t.NStates()
	t.x = append([]float64(nil), x[:n]...)
	return x[n:]
}

// GetState returns the block's current state vector.
func (t *TransferBase) GetState() []float64 { return t.x }

// State exposes the current state to the embedding variant's Deriv/Output
// implementation without copying.
func (t *TransferBase) State() []float64 { return t.x }
