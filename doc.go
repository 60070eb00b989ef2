/*
Package knitout compiles knit graphs into knitout, the instruction language
of V-bed knitting machines.

A knit graph records loops, the yarns that form them and the stitches that
pull each loop through its parents. The compiler splits the graph into
courses, simulates the machine needle by needle, plans the transfers each
course needs and writes a validated instruction stream.

# Documents

Graphs are usually described by a pattern document (see pkg/pattern): either
an explicit list of loops and edges, or a width and rows of stitch tokens:

	name: lace
	width: 8
	rows:
	  - k yo k2tog k k yo k2tog k
	  - k*

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/knitout"
	)

	func main() {
		eng, err := knitout.New("lace.yaml")
		if err != nil {
			log.Fatal(err)
		}
		program, err := eng.Compile(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		program.WriteTo(os.Stdout)
	}

The lower layers can be used directly: build a graph with pkg/knitgraph,
compile it with pkg/generator, and inspect the simulated beds through
pkg/machine.
*/
package knitout
