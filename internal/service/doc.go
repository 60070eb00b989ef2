// Package service compiles documents and swatches into stored artifacts.
//
// A Compiler fingerprints each input with SHA-256, serves repeats from an
// LRU cache, serialises concurrent compilations of the same input through
// a ports.DistributedLocker, and persists every new program through a
// ports.ArtifactStore.
package service
