package bdcoreerr_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bdcore/bdcoreerr"
)

var _ = Describe("Error", func() {
	It("formats the kind and message", func() {
		err := bdcoreerr.New(bdcoreerr.BlockCheck, "no inputs or outputs specified")
		Expect(err.Error()).To(Equal("BlockCheck: no inputs or outputs specified"))
	})

	It("includes the block name when set", func() {
		err := bdcoreerr.New(bdcoreerr.DuplicateName, "duplicate").WithBlock("gain.0")
		Expect(err.Error()).To(ContainSubstring("(block gain.0)"))
	})

	It("includes the path when set", func() {
		err := bdcoreerr.New(bdcoreerr.AlgebraicLoop, "cycle").WithPath([]string{"a", "b", "a"})
		Expect(err.Error()).To(ContainSubstring("a -> b -> a"))
	})

	It("wraps a cause and exposes it through Unwrap", func() {
		cause := errors.New("boom")
		err := bdcoreerr.Wrap(bdcoreerr.EvaluationDryRun, cause, "dry run failed")
		Expect(errors.Unwrap(err)).To(Equal(cause))
		Expect(err.Error()).To(ContainSubstring("boom"))
	})

	Describe("KindOf and Is", func() {
		It("finds the kind of a direct Error", func() {
			err := bdcoreerr.New(bdcoreerr.Unconnected, "no driver")
			kind, ok := bdcoreerr.KindOf(err)
			Expect(ok).To(BeTrue())
			Expect(kind).To(Equal(bdcoreerr.Unconnected))
		})

		It("reports the outermost Error's kind in a wrapped chain", func() {
			inner := bdcoreerr.New(bdcoreerr.NonFinite, "nan output")
			outer := bdcoreerr.Wrap(bdcoreerr.EvaluationDryRun, inner, "dry run failed")
			Expect(bdcoreerr.Is(outer, bdcoreerr.EvaluationDryRun)).To(BeTrue())
		})

		It("reports false for an unrelated error", func() {
			_, ok := bdcoreerr.KindOf(errors.New("not a bdcoreerr"))
			Expect(ok).To(BeFalse())
		})
	})
})
