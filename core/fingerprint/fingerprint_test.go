package fingerprint

import (
	"strings"
	"testing"
)

func TestCompute_Deterministic(t *testing.T) {
	a := Compute("The quick brown fox jumps over the lazy dog.")
	b := Compute("The quick brown fox jumps over the lazy dog.")

	if a != b {
		t.Errorf("Compute not deterministic: %s != %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
}

func TestCompute_PrefixOnly(t *testing.T) {
	prefix := strings.Repeat("a", 100)

	a := Compute(prefix + " first tail")
	b := Compute(prefix + " completely different tail")

	if a != b {
		t.Error("texts sharing the first 100 chars should share a fingerprint")
	}
}

func TestCompute_DifferentPrefixes(t *testing.T) {
	a := Compute("first paragraph of content")
	b := Compute("second paragraph of content")

	if a == b {
		t.Error("different prefixes should produce different fingerprints")
	}
}

func TestSet_AddAndContains(t *testing.T) {
	s := NewSet()
	fp := Compute("some block text")

	if s.Contains(fp) {
		t.Error("empty set should not contain fingerprint")
	}
	if !s.Add(fp) {
		t.Error("first Add should return true")
	}
	if s.Add(fp) {
		t.Error("second Add should return false")
	}
	if !s.Contains(fp) {
		t.Error("set should contain added fingerprint")
	}
}

func TestSet_Reset(t *testing.T) {
	s := NewSet()
	s.Add(Compute("block one"))
	s.Add(Compute("block two"))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", s.Len())
	}
}

func TestRefTable_RegisterLookupReset(t *testing.T) {
	tbl := NewRefTable()
	tbl.Register("block-1", "node-42")

	ref, ok := tbl.Lookup("block-1")
	if !ok || ref != "node-42" {
		t.Errorf("Lookup = (%q, %v), want (node-42, true)", ref, ok)
	}

	tbl.Reset()

	if _, ok := tbl.Lookup("block-1"); ok {
		t.Error("Lookup should miss after Reset")
	}
	if tbl.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", tbl.Len())
	}
}
