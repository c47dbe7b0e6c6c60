package block_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

type fixture struct {
	block.Base
}

func newFixture(nin, nout int) *fixture {
	return &fixture{Base: block.NewBase(block.KindFunction, nin, nout, 0)}
}

func (f *fixture) Output(t float64) ([]float64, error) {
	return f.Inputs(), nil
}

var _ = Describe("Base", func() {
	var b *fixture

	BeforeEach(func() {
		b = newFixture(2, 1)
	})

	It("rejects zero arity on Check", func() {
		empty := newFixture(0, 0)
		err := empty.Check()
		Expect(err).To(HaveOccurred())
		kind, ok := bdcoreerr.KindOf(err)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(bdcoreerr.BlockCheck))
	})

	It("tracks input completeness across SetInput calls", func() {
		Expect(b.Updated()).To(BeFalse())
		Expect(b.SetInput(0, 1)).To(BeFalse())
		Expect(b.Updated()).To(BeFalse())
		Expect(b.SetInput(1, 2)).To(BeTrue())
		Expect(b.Updated()).To(BeTrue())
		Expect(b.Inputs()).To(Equal([]float64{1, 2}))
	})

	It("clears inputs and Updated on Reset", func() {
		b.SetInput(0, 1)
		b.SetInput(1, 2)
		b.Reset()
		Expect(b.Updated()).To(BeFalse())
		Expect(b.Inputs()).To(Equal([]float64{0, 0}))
	})

	Describe("port linking", func() {
		BeforeEach(func() {
			b.SetID(1)
			b.InitPorts()
		})

		It("rejects a wire whose input port is out of range", func() {
			w := &block.Wire{End: block.NewPlug(1, 5)}
			err := b.LinkIn(w)
			Expect(bdcoreerr.Is(err, bdcoreerr.PortOutOfRange)).To(BeTrue())
		})

		It("rejects a second wire driving the same input port", func() {
			w1 := &block.Wire{Name: "w1", End: block.NewPlug(1, 0)}
			w2 := &block.Wire{Name: "w2", End: block.NewPlug(1, 0)}
			Expect(b.LinkIn(w1)).To(Succeed())
			err := b.LinkIn(w2)
			Expect(bdcoreerr.Is(err, bdcoreerr.DoubleDriver)).To(BeTrue())
		})

		It("appends every wire leaving the same output port", func() {
			w1 := &block.Wire{Start: block.NewPlug(1, 0)}
			w2 := &block.Wire{Start: block.NewPlug(1, 0)}
			Expect(b.LinkOut(w1)).To(Succeed())
			Expect(b.LinkOut(w2)).To(Succeed())
			Expect(b.OutPort(0)).To(Equal([]*block.Wire{w1, w2}))
		})
	})
})

var _ = Describe("Plug", func() {
	It("enumerates a range selector with a stride", func() {
		p := block.NewSlicePlug(3, block.Range(0, 6, 2))
		Expect(p.PortList()).To(Equal([]int{0, 2, 4}))
		Expect(p.Width()).To(Equal(3))
		Expect(p.IsSlice()).To(BeTrue())
	})

	It("panics when Port is called on a slice", func() {
		p := block.NewSlicePlug(3, block.Range(0, 2, 1))
		Expect(func() { p.Port() }).To(Panic())
	})

	It("formats a wire's full name", func() {
		w := &block.Wire{Start: block.NewPlug(1, 0), End: block.NewPlug(2, 3)}
		Expect(w.FullName()).To(Equal("1[0] --> 2[3]"))
	})
})

var _ = Describe("TransferBase", func() {
	It("restores the initial state on Reset", func() {
		tb := block.NewTransferBase(1, 1, []float64{5})
		tb.SetState([]float64{9})
		Expect(tb.GetState()).To(Equal([]float64{9}))
		tb.Reset()
		Expect(tb.GetState()).To(Equal([]float64{5}))
	})

	It("consumes only its own slice and returns the remainder", func() {
		tb := block.NewTransferBase(1, 1, []float64{0, 0})
		rest := tb.SetState([]float64{1, 2, 3})
		Expect(tb.GetState()).To(Equal([]float64{1, 2}))
		Expect(rest).To(Equal([]float64{3}))
	})
})
