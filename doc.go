// Package capcol implements a capped collection: a named container of many
// ordered lists of data items, backed by Redis, that evicts its globally
// oldest items as the backing Redis instance approaches its memory ceiling.
//
// Two Engine implementations are provided: rdriver.Driver dispatches the
// algorithm as Lua scripts against a real Redis connection, and
// memengine.Engine runs the identical algorithm in-process behind a mutex,
// for tests and embedded use without a Redis server.
package capcol
