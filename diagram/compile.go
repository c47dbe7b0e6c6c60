package diagram

import (
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

// Compile runs the diagram's 8-step compilation pipeline: flatten nested
// subsystems, run each block's own Check, build the name index, take the
// state inventory, link wires into ports, check connectivity, search for
// algebraic loops among function blocks, and finish with a dry evaluation
// at t=0 to catch anything the static checks missed. A failure leaves the
// diagram in PhaseBuilding so the caller can fix the diagram and retry.
func (d *Diagram) Compile() error {
	if d.phase != PhaseBuilding {
		return bdcoreerr.New(bdcoreerr.SubsystemCompile, "diagram %s is already %s", d.Name, d.phase)
	}

	if err := d.flatten(); err != nil {
		return err
	}

	for _, b := range d.blocks {
		if err := b.Check(); err != nil {
			return err
		}
	}

	if err := d.buildNameIndex(); err != nil {
		return err
	}

	if err := d.inventoryState(); err != nil {
		return err
	}

	if err := d.linkPorts(); err != nil {
		return err
	}

	if err := d.checkConnectivity(); err != nil {
		return err
	}

	if err := d.checkAlgebraicLoops(); err != nil {
		return err
	}

	d.phase = PhaseCompiled

	x0 := make([]float64, d.nstates)
	if _, err := d.Evaluate(x0, 0); err != nil {
		d.phase = PhaseBuilding
		return bdcoreerr.Wrap(bdcoreerr.EvaluationDryRun, err, "dry evaluation of diagram %s at t=0 failed", d.Name)
	}

	return nil
}

func (d *Diagram) buildNameIndex() error {
	d.nameIndex = make(map[string]int, len(d.blocks))
	for i, b := range d.blocks {
		if _, exists := d.nameIndex[b.Name()]; exists {
			return bdcoreerr.New(bdcoreerr.DuplicateName, "block name %q is used by more than one block", b.Name()).WithBlock(b.Name())
		}
		d.nameIndex[b.Name()] = i
	}
	return nil
}

func (d *Diagram) inventoryState() error {
	seen := make(map[string]bool)
	var names []string

	for _, b := range d.blocks {
		if b.Kind() != block.KindTransfer {
			continue
		}
		sb, ok := b.(block.Stateful)
		if !ok {
			return bdcoreerr.New(bdcoreerr.BlockCheck, "transfer block %s does not implement Stateful", b.Name()).WithBlock(b.Name())
		}

		declared := sb.StateNamesList()
		for i := 0; i < sb.NStates(); i++ {
			name := fmt.Sprintf("%sx%d", b.Name(), i)
			if declared != nil {
				name = declared[i]
			}
			if seen[name] {
				return bdcoreerr.New(bdcoreerr.StateNames, "state name %q is used by more than one state", name).WithBlock(b.Name())
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	d.nstates = len(names)
	d.stateNames = names
	return nil
}

func (d *Diagram) linkPorts() error {
	for _, b := range d.blocks {
		b.InitPorts()
	}
	for _, w := range d.wires {
		src := d.blocks[w.Start.BlockID]
		dst := d.blocks[w.End.BlockID]
		if err := src.LinkOut(w); err != nil {
			return err
		}
		if err := dst.LinkIn(w); err != nil {
			return err
		}
	}
	return nil
}

func (d *Diagram) checkConnectivity() error {
	for _, b := range d.blocks {
		for p := 0; p < b.NIn(); p++ {
			if b.InPort(p) == nil {
				return bdcoreerr.New(bdcoreerr.Unconnected, "input port %d of block %s has no driver", p, b.Name()).WithBlock(b.Name())
			}
		}
		for p := 0; p < b.NOut(); p++ {
			if len(b.OutPort(p)) == 0 {
				log.Printf("bdcore: output port %d of block %s drives nothing", p, b.Name())
			}
		}
	}
	return nil
}

// checkAlgebraicLoops searches for a cycle restricted to wires whose
// source and destination are both function-class blocks: the only class
// whose output can depend, in the same evaluation, on its own input.
func (d *Diagram) checkAlgebraicLoops() error {
	adj := make(map[int][]int)
	for _, w := range d.wires {
		src := d.blocks[w.Start.BlockID]
		dst := d.blocks[w.End.BlockID]
		if src.Kind() == block.KindFunction && dst.Kind() == block.KindFunction {
			adj[src.ID()] = append(adj[src.ID()], dst.ID())
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int)
	var path []int

	var visit func(id int) error
	visit = func(id int) error {
		color[id] = gray
		path = append(path, id)

		for _, next := range adj[id] {
			switch color[next] {
			case white:
				if err := visit(next); err != nil {
					return err
				}
			case gray:
				loop := append(d.namesOf(path), d.blocks[next].Name())
				return bdcoreerr.New(bdcoreerr.AlgebraicLoop, "algebraic loop: %s", strings.Join(loop, " -> ")).WithPath(loop)
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, b := range d.blocks {
		if b.Kind() != block.KindFunction {
			continue
		}
		if color[b.ID()] == white {
			if err := visit(b.ID()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Diagram) namesOf(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = d.blocks[id].Name()
	}
	return names
}

// flatten repeatedly splices the first remaining subsystem block's inner
// diagram into this one until none remain, then renumbers wire ids.
func (d *Diagram) flatten() error {
	for {
		idx := -1
		for i, b := range d.blocks {
			if b.Kind() == block.KindSubsystem {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}

		sub, ok := d.blocks[idx].(*Subsystem)
		if !ok {
			return bdcoreerr.New(bdcoreerr.SubsystemShape, "block %s declares KindSubsystem but is not a *Subsystem", d.blocks[idx].Name()).WithBlock(d.blocks[idx].Name())
		}
		if err := d.spliceSubsystem(idx, sub); err != nil {
			return err
		}
	}

	for i, w := range d.wires {
		w.ID = i
	}
	return nil
}

// spliceSubsystem removes the subsystem block at idx, appends its inner
// diagram's non-boundary blocks (renamed under the subsystem's own name),
// rewrites wires crossing the boundary to skip the inport/outport
// pseudo-blocks entirely, and keeps every other wire untouched.
func (d *Diagram) spliceSubsystem(idx int, sub *Subsystem) error {
	inner := sub.Inner

	var inBlock, outBlock block.Block
	innerByID := map[int]block.Block{}
	var keep []block.Block

	for _, b := range inner.blocks {
		innerByID[b.ID()] = b
		switch b.(type) {
		case block.PassthroughInport:
			if inBlock != nil {
				return bdcoreerr.New(bdcoreerr.SubsystemShape, "subsystem %s sub-diagram has more than one inport pseudo-block", sub.Name()).WithBlock(sub.Name())
			}
			inBlock = b
		case block.PassthroughOutport:
			if outBlock != nil {
				return bdcoreerr.New(bdcoreerr.SubsystemShape, "subsystem %s sub-diagram has more than one outport pseudo-block", sub.Name()).WithBlock(sub.Name())
			}
			outBlock = b
		default:
			keep = append(keep, b)
		}
	}
	if inBlock == nil {
		return bdcoreerr.New(bdcoreerr.SubsystemShape, "subsystem %s sub-diagram has no inport pseudo-block", sub.Name()).WithBlock(sub.Name())
	}
	if outBlock == nil {
		return bdcoreerr.New(bdcoreerr.SubsystemShape, "subsystem %s sub-diagram has no outport pseudo-block", sub.Name()).WithBlock(sub.Name())
	}

	prefix := sub.Name() + "."
	base := len(d.blocks) - 1 // the subsystem's own slot is removed, kept blocks land after it
	finalID := make(map[int]int, len(keep))
	for i, b := range keep {
		finalID[b.ID()] = base + i
		b.SetName(prefix + b.Name())
	}

	var rewired []*block.Wire
	for _, w := range inner.wires {
		if _, ok := innerByID[w.Start.BlockID].(block.PassthroughInport); ok {
			continue
		}
		if _, ok := innerByID[w.End.BlockID].(block.PassthroughOutport); ok {
			continue
		}
		rewired = append(rewired, &block.Wire{
			Name:  prefix + w.Name,
			Start: block.NewPlug(finalID[w.Start.BlockID], w.Start.Port()).WithTag(block.TagStart),
			End:   block.NewPlug(finalID[w.End.BlockID], w.End.Port()).WithTag(block.TagEnd),
		})
	}

	// Removing the subsystem's own slot shifts every later block down by
	// one; oldToNew carries that shift so wire endpoints untouched by the
	// splice itself still land on the right block after reassembly.
	oldToNew := make(map[int]int, len(d.blocks)-1)
	for i := range d.blocks {
		if i == idx {
			continue
		}
		if i < idx {
			oldToNew[i] = i
		} else {
			oldToNew[i] = i - 1
		}
	}

	var external []*block.Wire
	for _, w := range d.wires {
		switch {
		case w.Start.BlockID == sub.ID():
			for _, iw := range inner.wires {
				if iw.End.BlockID == outBlock.ID() && iw.End.Port() == w.Start.Port() {
					external = append(external, &block.Wire{
						Name:  w.Name,
						Start: block.NewPlug(finalID[iw.Start.BlockID], iw.Start.Port()).WithTag(block.TagStart),
						End:   block.NewPlug(oldToNew[w.End.BlockID], w.End.Port()).WithTag(block.TagEnd),
					})
				}
			}
		case w.End.BlockID == sub.ID():
			for _, iw := range inner.wires {
				if iw.Start.BlockID == inBlock.ID() && iw.Start.Port() == w.End.Port() {
					external = append(external, &block.Wire{
						Name:  w.Name,
						Start: block.NewPlug(oldToNew[w.Start.BlockID], w.Start.Port()).WithTag(block.TagStart),
						End:   block.NewPlug(finalID[iw.End.BlockID], iw.End.Port()).WithTag(block.TagEnd),
					})
				}
			}
		default:
			external = append(external, &block.Wire{
				Name:  w.Name,
				Start: block.NewPlug(oldToNew[w.Start.BlockID], w.Start.Port()).WithTag(block.TagStart),
				End:   block.NewPlug(oldToNew[w.End.BlockID], w.End.Port()).WithTag(block.TagEnd),
			})
		}
	}

	newBlocks := make([]block.Block, 0, len(d.blocks)-1+len(keep))
	newBlocks = append(newBlocks, d.blocks[:idx]...)
	newBlocks = append(newBlocks, d.blocks[idx+1:]...)
	newBlocks = append(newBlocks, keep...)
	for i, b := range newBlocks {
		b.SetID(i)
	}

	d.blocks = newBlocks
	d.wires = append(external, rewired...)
	return nil
}
