/*
Package machine simulates a V-bed knitting machine.

The State owns the front and back needle beds, the racking between them, the
yarn carriers that are hooked in or in operation, and the knitout instruction
log. Every operation checks its preconditions before it touches the beds, so a
rejected operation leaves the State exactly as it was.

Needle positions are 0-indexed internally and written 1-indexed in knitout
(position 0 on the front bed is "f1", its slider is "fs1").
*/
package machine
