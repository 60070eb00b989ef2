// Package pattern reads and writes knit graphs as YAML or JSON documents.
//
// Two document kinds are understood. A GraphDocument lists yarns, loops and
// stitch edges explicitly and maps one-to-one onto a knitgraph.Graph. A
// RowDocument describes fabric row by row with stitch tokens such as
//
//	rows:
//	  - "k2, p2*"
//	  - "k, yo, k2tog, k"
//
// which Compile expands into a graph: each row works the loops of the row
// before it in reverse, the way a carriage walks back across the bed.
package pattern
