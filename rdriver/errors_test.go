package rdriver

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/arjunkota/capcol"
)

func TestClassifyScriptErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want capcol.Kind
	}{
		{"exists", errors.New("EXISTS"), capcol.KindAlreadyExists},
		{"notfound", errors.New("NOTFOUND"), capcol.KindNotFound},
		{"empty", errors.New("EMPTY"), capcol.KindNotFound},
		{"badcursor", errors.New("BADCURSOR"), capcol.KindInvalidArgument},
		{"olderthanallowed", errors.New("OLDERTHANALLOWED"), capcol.KindOlderThanAllowed},
		{"incompatible-data-version", errors.New("INCOMPATIBLEDATAVERSION"), capcol.KindIncompatibleDataVersion},
		{"mismatch", errors.New("MISMATCH: older_allowed"), capcol.KindInvalidArgument},
		{"inconsistent", errors.New("INCONSISTENT: list x queue time does not match its time index"), capcol.KindInternal},
		{"oom", errors.New("OOM command not allowed when used memory > 'maxmemory'"), capcol.KindOutOfMemory},
		{"redis-nil", redis.Nil, capcol.KindNotFound},
		{"connection", errors.New("dial tcp: connect: connection refused"), capcol.KindUnavailable},
		{"unknown", errors.New("something else entirely"), capcol.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("Op", tc.err)
			if !capcol.Is(got, tc.want) {
				t.Fatalf("classify(%v) = %v, want kind %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyNilIsNil(t *testing.T) {
	if classify("Op", nil) != nil {
		t.Fatalf("classify(nil) should be nil")
	}
}
