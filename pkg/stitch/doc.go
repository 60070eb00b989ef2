// Package stitch is the symbol table of stitch names used by row patterns.
//
// A name resolves to one of three kinds of Symbol: a Stitch (knit, purl,
// decreases, yarn-over, slip), a Cable (two groups of loops crossing each
// other), or a Number (a pattern variable such as a rib width).
package stitch
