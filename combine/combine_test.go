package combine_test

import (
	"testing"

	"cssisect/combine"
	"cssisect/parse"
)

func intersectStrings(t *testing.T, a, b string) (string, bool) {
	t.Helper()
	ua, err := parse.Parse(a)
	if err != nil {
		t.Fatalf("Parse(%q): %v", a, err)
	}
	ub, err := parse.Parse(b)
	if err != nil {
		t.Fatalf("Parse(%q): %v", b, err)
	}
	out, ok := combine.IntersectUnions(ua, ub)
	if !ok {
		return "", false
	}
	return out.String(), true
}

func TestIntersectUnionsDifferentTypesIsEmpty(t *testing.T) {
	if _, ok := intersectStrings(t, "a", "b"); ok {
		t.Fatalf("expected a ∩ b to be unsatisfiable")
	}
}

func TestIntersectUnionsMergesClasses(t *testing.T) {
	got, ok := intersectStrings(t, "a.x", "a.y")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "a.x.y" {
		t.Fatalf("got %q, want a.x.y", got)
	}
}

func TestIntersectUnionsChildVsDescendant(t *testing.T) {
	got, ok := intersectStrings(t, "div > span", "span")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "div > span" {
		t.Fatalf("got %q, want \"div > span\"", got)
	}
}

func TestIntersectUnionsUniversalIdentity(t *testing.T) {
	got, ok := intersectStrings(t, "a", "*")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "a" {
		t.Fatalf("got %q, want a", got)
	}
}

func TestIntersectUnionsConflictingPseudoElements(t *testing.T) {
	if _, ok := intersectStrings(t, "p::first-line", "p::first-letter"); ok {
		t.Fatalf("expected conflicting pseudo-elements to be unsatisfiable")
	}
}

func TestIntersectUnionsDistributesOverCommaBranches(t *testing.T) {
	got, ok := intersectStrings(t, "a, b", "a")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "a" {
		t.Fatalf("got %q, want a (the b branch is dropped as unsatisfiable)", got)
	}
}

// The rightmost compound in a sibling run is the one bound to the rest of
// the chain; "a + b" must intersect its "b" against another chain's child
// subject, keeping "a" as an independent sibling constraint rather than
// failing the whole chain when "a" doesn't match.
func TestIntersectUnionsSiblingAnchorIsRightmostCompound(t *testing.T) {
	got, ok := intersectStrings(t, "a + b > c", "b > c")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "a ~ b > c" {
		t.Fatalf("got %q, want \"a ~ b > c\"", got)
	}
}
