package capcol

import "testing"

func TestNewKeySpaceRejectsBadTokens(t *testing.T) {
	cases := []struct {
		prefix, name string
	}{
		{"", "orders"},
		{"P", ""},
		{"P:Q", "orders"},
		{"P", "or:ders"},
	}
	for _, tc := range cases {
		if _, err := NewKeySpace(tc.prefix, tc.name); err == nil {
			t.Fatalf("NewKeySpace(%q, %q) should fail", tc.prefix, tc.name)
		}
	}
}

func TestKeySpaceKeys(t *testing.T) {
	ks, err := NewKeySpace("P", "orders")
	if err != nil {
		t.Fatalf("NewKeySpace: %v", err)
	}

	cases := []struct {
		got  string
		want string
	}{
		{ks.Status(), "P:S:orders"},
		{ks.Queue(), "P:Q:orders"},
		{ks.Data("region-a"), "P:D:orders:region-a"},
		{ks.Time("region-a"), "P:T:orders:region-a"},
		{ks.DataGlob(), "P:D:orders:*"},
		{ks.TimeGlob(), "P:T:orders:*"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestListFromDataKey(t *testing.T) {
	ks, err := NewKeySpace("P", "orders")
	if err != nil {
		t.Fatalf("NewKeySpace: %v", err)
	}

	list, ok := ks.ListFromDataKey("P:D:orders:region-a")
	if !ok || list != "region-a" {
		t.Fatalf("ListFromDataKey: got (%q, %v), want (region-a, true)", list, ok)
	}

	if _, ok := ks.ListFromDataKey("P:D:other:region-a"); ok {
		t.Fatalf("ListFromDataKey should reject a key from a different collection")
	}
}
