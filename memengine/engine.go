package memengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/arjunkota/capcol"
	"github.com/arjunkota/capcol/logx"
)

// itemRecord is one stored item within a list.
type itemRecord struct {
	dataTime float64
	payload  []byte
}

// listState holds one list's items and its own oldest-first index.
type listState struct {
	items     map[string]*itemRecord
	timeIndex *mapHeap[string] // dataID -> dataTime
	bytes     int64
}

func newListState() *listState {
	return &listState{
		items:     make(map[string]*itemRecord),
		timeIndex: newMapHeap[string](),
	}
}

func (ls *listState) isEmpty() bool {
	return len(ls.items) == 0
}

// collectionState holds every list belonging to one collection, plus the
// queue used to find the globally oldest item across all of them.
type collectionState struct {
	params          capcol.Params
	lists           map[string]*listState
	listHeap        *mapHeap[string] // list name -> that list's oldest dataTime
	bytes           int64
	items           int64
	lastRemovedTime float64
}

func newCollectionState(params capcol.Params) *collectionState {
	return &collectionState{
		params:   params,
		lists:    make(map[string]*listState),
		listHeap: newMapHeap[string](),
	}
}

// Engine is an in-process, mutex-guarded implementation of capcol.Engine.
// It models Redis's single-threaded script execution with a plain
// sync.Mutex: every public method holds the lock for its whole duration.
type Engine struct {
	mu            sync.Mutex
	collections   map[string]*collectionState
	memoryCeiling int64
	usedBytes     int64
	log           *logx.Logger
}

var _ capcol.Engine = (*Engine)(nil)

// itemOverheadBytes approximates the bookkeeping Redis would spend per
// item (key names, hash/zset entry overhead) on top of the raw payload,
// so usedBytes tracks something closer to real memory pressure than the
// payload size alone.
const itemOverheadBytes = 64

// New returns an Engine with the given memory ceiling in bytes. A ceiling
// of 0 disables memory-pressure eviction entirely.
func New(memoryCeiling int64) *Engine {
	return &Engine{
		collections:   make(map[string]*collectionState),
		memoryCeiling: memoryCeiling,
		log:           logx.Default("memengine"),
	}
}

// used returns the engine's current tracked byte usage.
func (e *Engine) used() int64 {
	return e.usedBytes
}

// ceiling returns the configured memory ceiling.
func (e *Engine) ceiling() int64 {
	return e.memoryCeiling
}

// reserveCoef returns 1+memory_reserve for params, or 0 if the engine has
// no ceiling configured (eviction never triggers on an unbounded store).
func (e *Engine) reserveCoef(params capcol.Params) float64 {
	if e.memoryCeiling == 0 {
		return 0
	}
	return 1 + params.MemoryReserve
}

// tight reports whether usage, scaled by the collection's reserve
// coefficient, has reached the memory ceiling.
func (e *Engine) tight(params capcol.Params) bool {
	coef := e.reserveCoef(params)
	if coef == 0 {
		return false
	}
	return float64(e.used())*coef >= float64(e.ceiling())
}

// wouldExceed reports whether adding extra bytes would push usage past the
// hard ceiling, modeling the OOM rejection a real Redis instance would
// return from the write command inside the Lua script.
func (e *Engine) wouldExceed(extra int64) bool {
	if e.memoryCeiling == 0 {
		return false
	}
	return e.used()+extra > e.ceiling()
}

func (e *Engine) getCollection(name string) (*collectionState, error) {
	cs, ok := e.collections[name]
	if !ok {
		return nil, capcol.NewError("", capcol.KindNotFound, fmt.Errorf("collection %q does not exist", name))
	}
	return cs, nil
}

func (e *Engine) getOrCreateCollection(name string) *collectionState {
	cs, ok := e.collections[name]
	if !ok {
		cs = newCollectionState(capcol.DefaultParams())
		e.collections[name] = cs
	}
	return cs
}

// Ping always succeeds; there is no transport to probe.
func (e *Engine) Ping(ctx context.Context) error {
	return nil
}

// ConfigOK always succeeds; memengine has no external configuration to
// validate.
func (e *Engine) ConfigOK(ctx context.Context) error {
	return nil
}

// Close is a no-op; memengine holds no external resources.
func (e *Engine) Close() error {
	return nil
}
