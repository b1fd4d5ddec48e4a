package ident

import "testing"

func TestFormatMatchesWireFormat(t *testing.T) {
	prefix, ok := Prefix(KindTrip)
	if !ok {
		t.Fatalf("trip kind has no prefix")
	}
	id := Format(prefix, 42)
	if id != "TR-42" {
		t.Fatalf("unexpected identifier: %s", id)
	}
	if !Valid(id) {
		t.Fatalf("identifier %s should be valid", id)
	}
}

func TestValidRejectsZeroAndLeadingZeros(t *testing.T) {
	for _, id := range []string{"TR-0", "TR-01", "tr-1", "T-1", "TOOLONG-1", "TR1", "TR-"} {
		if Valid(id) {
			t.Fatalf("identifier %q should be rejected", id)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	prefix, n, err := Parse("LOC-1007")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if prefix != "LOC" || n != 1007 {
		t.Fatalf("unexpected parse result: %s %d", prefix, n)
	}
	if _, _, err := Parse("LOC_1007"); err == nil {
		t.Fatalf("expected malformed error")
	}
}

func TestPrefixesAreUniqueAndWellFormed(t *testing.T) {
	seen := map[string]Kind{}
	for kind, prefix := range prefixes {
		if !Valid(Format(prefix, 1)) {
			t.Fatalf("prefix %q of kind %q produces invalid identifiers", prefix, kind)
		}
		if other, dup := seen[prefix]; dup {
			t.Fatalf("prefix %q shared by %q and %q", prefix, kind, other)
		}
		seen[prefix] = kind
	}
}
