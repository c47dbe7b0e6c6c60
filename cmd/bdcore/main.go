// Command bdcore builds, compiles and runs a small demonstration diagram,
// printing its structural report and recorded trace.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bdcore/blocklib"
	"github.com/sarchlab/bdcore/config"
	"github.com/sarchlab/bdcore/diagram"
	"github.com/sarchlab/bdcore/report"
)

func main() {
	opts, err := config.NewBuilder().WithArgs(os.Args[1:]).Build()
	if err != nil {
		log.Fatalf("bdcore: failed to resolve options: %v", err)
	}

	d := diagram.New(opts)

	c := d.Add("CONSTANT", blocklib.NewConstant([]float64{2}), "")
	g := d.Add("GAIN", blocklib.NewGain(3), "")
	s := d.Add("SCOPE", blocklib.NewScope(1), "")

	if err := d.Connect("c-to-g", c, g); err != nil {
		log.Fatalf("bdcore: connect failed: %v", err)
	}
	if err := d.Connect("g-to-s", g, s); err != nil {
		log.Fatalf("bdcore: connect failed: %v", err)
	}

	if err := d.Compile(); err != nil {
		log.Fatalf("bdcore: compile failed: %v", err)
	}

	report.Blocks(os.Stdout, d)
	report.Wires(os.Stdout, d)

	if err := d.RunRealtime(200 * time.Millisecond); err != nil {
		log.Fatalf("bdcore: run failed: %v", err)
	}

	scope := s.(*blocklib.Scope)
	fmt.Println("recorded samples:")
	for _, sample := range scope.History() {
		fmt.Printf("  t=%.3f value=%v\n", sample.T, sample.Values)
	}

	atexit.Exit(0)
}
