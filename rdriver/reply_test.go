package rdriver

import "testing"

func TestToInt64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
	}{
		{int64(42), 42},
		{"42", 42},
		{nil, 0},
	}
	for _, tc := range cases {
		got, err := toInt64(tc.in)
		if err != nil {
			t.Fatalf("toInt64(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("toInt64(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToInt64RejectsUnsupportedType(t *testing.T) {
	if _, err := toInt64(3.14); err == nil {
		t.Fatalf("toInt64(float64) should fail")
	}
}

func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
	}{
		{"100.5000", 100.5},
		{int64(7), 7},
		{nil, 0},
	}
	for _, tc := range cases {
		got, err := toFloat64(tc.in)
		if err != nil {
			t.Fatalf("toFloat64(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("toFloat64(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatDataTimeRoundTrips(t *testing.T) {
	s := formatDataTime(100.5)
	got, err := toFloat64(s)
	if err != nil {
		t.Fatalf("toFloat64(%q): %v", s, err)
	}
	if got != 100.5 {
		t.Fatalf("round trip: got %v, want 100.5", got)
	}
}

func TestToStringAndBytes(t *testing.T) {
	s, err := toString("hello")
	if err != nil || s != "hello" {
		t.Fatalf("toString: got (%q, %v)", s, err)
	}
	b, err := toBytes([]byte("world"))
	if err != nil || string(b) != "world" {
		t.Fatalf("toBytes: got (%q, %v)", b, err)
	}
}
