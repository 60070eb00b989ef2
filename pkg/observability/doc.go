/*
Package observability provides monitoring for the knitout compiler.

It turns generator lifecycle hooks into Prometheus metrics and structured
log lines, and counts compilations and cache use for the compile service.
*/
package observability
