/*
Package generator lowers a knit graph into a knitout program.

The graph is split into courses. Course 0 is cast on with two interlocking
tuck passes. Every later course is compiled in three steps against a
simulated machine.State:

 1. Targets: each loop with parents is formed on the needle of its anchor
    parent (the parent with no offset, else the bottom of its stack) shifted
    by that parent's offset. Knit loops go on the front bed, purl loops on the
    back bed. Loops without parents (yarn-overs) take the first free needle
    after their left neighbour.
 2. Transfers: parents that must move sideways are first parked on the
    opposite bed, then brought onto their targets stack layer by stack layer.
    Moves that share a crossing depth and a racking go in one xfer pass.
 3. Knitting: a knit pass forms the loops with parents and a tuck pass forms
    the yarn-overs, both in the course direction. Even courses go left to
    right, odd courses right to left.

Any rejected machine operation aborts generation with a *GenerationError.
No partial program is returned.
*/
package generator
