/*
Package knitgraph contains the knit graph, the intermediate representation
consumed by the knitout generator.

A knit graph is a directed dependency graph of loops. An edge parent -> child
means the child loop was pulled through the parent, tagged with the direction
of the pull (back-to-front for a knit, front-to-back for a purl) and with a
Placement describing where the child sits relative to the parent.

# Key Entities

  - Loop: a single stitch node with an ordered stack of parents.
  - Yarn: a continuous strand; owns the order in which loops were formed.
  - Graph: the arena of loops and edges plus the set of yarns.

Loops are grouped into courses (rows) by Courses. Odd courses are reversed so
that every course lists its loops left to right in needle order, mirroring the
carriage travelling back and forth across the bed.
*/
package knitgraph
