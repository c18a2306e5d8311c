// Package memengine implements the capped-collection algorithm natively in
// Go, behind a single mutex, as the in-process equivalent of the Lua
// scripts rdriver dispatches against Redis. It exists so the algorithm can
// be tested deterministically without a running Redis server, and so it
// can be embedded where a separate store is not wanted.
package memengine
