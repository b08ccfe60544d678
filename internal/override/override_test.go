package override

import "testing"

func TestConsumeFirstMatchWins(t *testing.T) {
	tab := New()
	tab.Set("top.inst.WIDTH", "8")
	tab.Set("top.inst.WIDTH", "16")

	v, ok := tab.Consume("top.inst.WIDTH")
	if !ok || v != "8" {
		t.Fatalf("expected first override 8, got %q ok=%v", v, ok)
	}

	v, ok = tab.Consume("top.inst.WIDTH")
	if !ok || v != "16" {
		t.Fatalf("expected second override 16 after first consumed, got %q ok=%v", v, ok)
	}

	if _, ok = tab.Consume("top.inst.WIDTH"); ok {
		t.Fatalf("expected no more matches after both consumed")
	}
}

func TestConsumeIsCaseInsensitiveOnStorageAndLookup(t *testing.T) {
	tab := New()
	tab.Set("TOP.Inst.Width", "4")

	if _, ok := tab.Consume("top.inst.width"); !ok {
		t.Fatalf("expected lower-cased lookup to match lower-cased storage")
	}
}

func TestConsumeNoMatch(t *testing.T) {
	tab := New()
	tab.Set("top.inst.WIDTH", "8")

	if _, ok := tab.Consume("top.other.WIDTH"); ok {
		t.Fatalf("expected no match for unrelated name")
	}
}

func TestUnusedReportsOnlyUnconsumed(t *testing.T) {
	tab := New()
	tab.Set("top.a.WIDTH", "1")
	tab.Set("top.b.WIDTH", "2")

	if _, ok := tab.Consume("top.a.width"); !ok {
		t.Fatalf("expected top.a.width to match")
	}

	unused := tab.Unused()
	if len(unused) != 1 || unused[0] != "top.b.width" {
		t.Fatalf("expected only top.b.width unused, got %v", unused)
	}
}
