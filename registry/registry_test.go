package registry_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
	"github.com/sarchlab/bdcore/registry"
)

type widget struct {
	block.Base
}

func (w *widget) Output(t float64) ([]float64, error) { return w.Inputs(), nil }

func init() {
	registry.Register("_widget_", block.KindFunction, func(p registry.Params) (block.Block, error) {
		return &widget{Base: block.NewBase(block.KindFunction, 1, 1, 0)}, nil
	})
}

var _ = Describe("Params", func() {
	It("falls back to the default when a key is absent", func() {
		p := registry.Params{}
		Expect(p.Float("k", 2.5)).To(Equal(2.5))
		Expect(p.String("name", "x")).To(Equal("x"))
		Expect(p.Int("n", 7)).To(Equal(7))
		Expect(p.Floats("value")).To(BeNil())
	})

	It("returns the stored value when present and correctly typed", func() {
		p := registry.Params{"k": 3.0, "name": "gain", "n": 4, "value": []float64{1, 2}}
		Expect(p.Float("k", 0)).To(Equal(3.0))
		Expect(p.String("name", "")).To(Equal("gain"))
		Expect(p.Int("n", 0)).To(Equal(4))
		Expect(p.Floats("value")).To(Equal([]float64{1, 2}))
	})
})

var _ = Describe("Register and Lookup", func() {
	It("normalizes the type name to upper case with underscores trimmed", func() {
		factory, kind, err := registry.Lookup("widget")
		Expect(err).NotTo(HaveOccurred())
		Expect(kind).To(Equal(block.KindFunction))

		b, err := factory(registry.Params{})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Kind()).To(Equal(block.KindFunction))
	})

	It("fails with a BlockCheck error for an unregistered type", func() {
		_, _, err := registry.Lookup("NOSUCHBLOCK")
		Expect(bdcoreerr.Is(err, bdcoreerr.BlockCheck)).To(BeTrue())
	})

	It("panics on a duplicate registration", func() {
		Expect(func() {
			registry.Register("WIDGET", block.KindFunction, func(p registry.Params) (block.Block, error) {
				return nil, nil
			})
		}).To(Panic())
	})

	It("lists registered names", func() {
		Expect(registry.Names()).To(ContainElement("WIDGET"))
		Expect(registry.SortedNames()).To(ContainElement("WIDGET"))
	})
})
