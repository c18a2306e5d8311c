package capcol

import (
	"fmt"
	"strings"
)

// KeySpace computes the backing-store key names for one collection. The
// layout is fixed: a status hash, a priority queue (sorted set) of list
// names ordered by their oldest item, and per-list data/time keys.
//
//	Status P:S:N       hash    counters and collection params
//	Queue  P:Q:N        zset    list name -> oldest data time
//	Data   P:D:N:L      hash    data id -> payload
//	Time   P:T:N:L      zset    data id -> data time
type KeySpace struct {
	prefix string
	name   string
}

// NewKeySpace builds a KeySpace for a collection named name, namespaced
// under prefix. Both must be non-empty and free of the ':' separator.
func NewKeySpace(prefix, name string) (KeySpace, error) {
	if err := ValidateToken(prefix); err != nil {
		return KeySpace{}, NewError("NewKeySpace", KindInvalidArgument, fmt.Errorf("prefix: %w", err))
	}
	if err := ValidateToken(name); err != nil {
		return KeySpace{}, NewError("NewKeySpace", KindInvalidArgument, fmt.Errorf("name: %w", err))
	}
	return KeySpace{prefix: prefix, name: name}, nil
}

// ValidateToken reports whether s is usable as a key-space component: non
// empty and free of the ':' separator used to build composite keys.
func ValidateToken(s string) error {
	if s == "" {
		return fmt.Errorf("empty token")
	}
	if strings.Contains(s, ":") {
		return fmt.Errorf("token %q contains ':'", s)
	}
	return nil
}

// Name returns the collection name this KeySpace addresses.
func (ks KeySpace) Name() string {
	return ks.name
}

// Status returns the P:S:N status hash key.
func (ks KeySpace) Status() string {
	return fmt.Sprintf("%s:S:%s", ks.prefix, ks.name)
}

// Queue returns the P:Q:N priority queue key.
func (ks KeySpace) Queue() string {
	return fmt.Sprintf("%s:Q:%s", ks.prefix, ks.name)
}

// Data returns the P:D:N:L data hash key for the given list.
func (ks KeySpace) Data(list string) string {
	return fmt.Sprintf("%s:D:%s:%s", ks.prefix, ks.name, list)
}

// Time returns the P:T:N:L time index key for the given list.
func (ks KeySpace) Time(list string) string {
	return fmt.Sprintf("%s:T:%s:%s", ks.prefix, ks.name, list)
}

// DataGlob returns the pattern matching every list's data key, for
// enumerating lists by key scan.
func (ks KeySpace) DataGlob() string {
	return fmt.Sprintf("%s:D:%s:*", ks.prefix, ks.name)
}

// TimeGlob returns the pattern matching every list's time-index key.
func (ks KeySpace) TimeGlob() string {
	return fmt.Sprintf("%s:T:%s:*", ks.prefix, ks.name)
}

// ListFromDataKey extracts the list name from a key produced by Data, as
// returned by a glob scan over DataGlob.
func (ks KeySpace) ListFromDataKey(key string) (string, bool) {
	prefix := fmt.Sprintf("%s:D:%s:", ks.prefix, ks.name)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return strings.TrimPrefix(key, prefix), true
}
