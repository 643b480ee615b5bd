package cssisect_test

import (
	"strings"
	"testing"

	"cssisect"
)

func TestIntersectScenarios(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want string
	}{
		{"different-types", []string{"a", "b"}, ""},
		{"class-merge", []string{"a.x", "a.y"}, "a.x.y"},
		{"prefix-anchor", []string{"[href^='https://']", "[href^='https://example']"}, "[href^='https://example']"},
		// foo/abc/en-US round-trip as bare CSS identifiers, so they render
		// unquoted (§4.7's third quoteValue option); https://... does not.
		{"case-fold-equality", []string{"[x='Foo' i]", "[x='foo']"}, "[x=foo]"},
		{"prefix-specificity", []string{"[x^='ab']", "[x^='abc']"}, "[x^=abc]"},
		{"dash-match", []string{"[x|='en']", "[x|='en-US']"}, "[x|=en-US]"},
		{"child-vs-descendant", []string{"div > span", "span"}, "div > span"},
		{"universal-identity", []string{"a", "*"}, "a"},
		{"conflicting-pseudo-elements", []string{"p::first-line", "p::first-letter"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := cssisect.Intersect(c.in...)
			if err != nil {
				t.Fatalf("Intersect(%v): %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("Intersect(%v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestIntersectVariadicFold(t *testing.T) {
	got, err := cssisect.Intersect("a + b:nth-child(4) > b", "b, c", "b:not([attr~='yo']) > b", "b", "d b")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got == "" {
		t.Fatalf("expected a non-empty intersection")
	}
	for _, want := range []string{"b:nth-child(4)", ":not([attr~='yo'])", "> b"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Intersect(...) = %q, missing expected fragment %q", got, want)
		}
	}
}

func TestIntersectSingleArgumentRoundTrips(t *testing.T) {
	got, err := cssisect.Intersect("div.foo#bar")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got != "div.foo#bar" {
		t.Fatalf("got %q, want div.foo#bar", got)
	}
}

func TestIntersectIdempotent(t *testing.T) {
	got, err := cssisect.Intersect("div.foo[href^='a']", "div.foo[href^='a']")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	// "a" round-trips as a bare identifier, so it renders unquoted.
	if got != "div.foo[href^=a]" {
		t.Fatalf("got %q, want div.foo[href^=a]", got)
	}
}

func TestIntersectCommutative(t *testing.T) {
	got1, err := cssisect.Intersect("a.x", "a.y")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	got2, err := cssisect.Intersect("a.y", "a.x")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got1 != got2 {
		t.Fatalf("Intersect(a.x, a.y) = %q, Intersect(a.y, a.x) = %q, want equal", got1, got2)
	}
}

func TestIntersectAssociative(t *testing.T) {
	left, err := cssisect.Intersect("a.x", "a.y", "a.z")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	tu, err := cssisect.Intersect("a.y", "a.z")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	right, err := cssisect.Intersect("a.x", tu)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if left != right {
		t.Fatalf("left-assoc = %q, right-assoc = %q, want equal", left, right)
	}
}

func TestIntersectMonotonicityAddingAssertionNarrows(t *testing.T) {
	broad, err := cssisect.Intersect("a.x", "a")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	narrow, err := cssisect.Intersect("a.x.y", "a")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if broad != "a.x" {
		t.Fatalf("got %q, want a.x", broad)
	}
	if narrow != "a.x.y" {
		t.Fatalf("got %q, want a.x.y", narrow)
	}
}

func TestIntersectParseErrorsAccumulate(t *testing.T) {
	_, err := cssisect.Intersect("div.", "a[", "valid")
	if err == nil {
		t.Fatalf("expected error for malformed selectors")
	}
	for _, want := range []string{"selector 0", "selector 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s; want every malformed selector reported", err, want)
		}
	}
}

func TestIntersectRequiresAtLeastOneSelector(t *testing.T) {
	if _, err := cssisect.Intersect(); err == nil {
		t.Fatalf("expected error for zero selectors")
	}
}

func TestNewIntersectorWithLogger(t *testing.T) {
	i := cssisect.NewIntersector(cssisect.WithLogger(nil))
	got, err := i.Intersect("a", "a")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got != "a" {
		t.Fatalf("got %q, want a", got)
	}
}
