// Package rdriver implements capcol.Engine by dispatching the
// capped-collection algorithm as Lua scripts against a Redis connection,
// relying on Redis's single-threaded script execution for atomicity.
package rdriver
