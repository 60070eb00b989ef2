// Package knitout turns batches of needle operations into knitout text.
//
// A CarriagePass groups operations of one InstructionType that the carriage
// performs in a single sweep. Writing a pass applies it to a machine.State
// and returns the lines, including the inhook and releasehook bookkeeping for
// the yarn carriers it uses.
package knitout
