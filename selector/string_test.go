package selector_test

import (
	"testing"

	"cssisect/selector"
)

func TestStateStringOrdering(t *testing.T) {
	st := selector.State{
		Type: "div",
		Attrs: []selector.AttributeAssertion{
			{Key: "class", Op: selector.OpInclude, Value: "b", CaseSensitive: true},
			{Key: "class", Op: selector.OpInclude, Value: "a", CaseSensitive: true},
			{Key: "id", Op: selector.OpEqual, Value: "main", CaseSensitive: true},
			{Key: "href", Op: selector.OpExists},
		},
		PseudoClasses: []selector.PseudoClass{{Name: "hover"}},
	}
	got := st.String()
	want := "div.a.b[href]:hover#main"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestStateStringUniversalFallback(t *testing.T) {
	if got := (selector.State{}).String(); got != "*" {
		t.Fatalf("String() = %q, want *", got)
	}
}

func TestRenderAttrCaseInsensitive(t *testing.T) {
	st := selector.State{
		Attrs: []selector.AttributeAssertion{
			{Key: "x", Op: selector.OpEqual, Value: "foo", CaseSensitive: false},
		},
	}
	// "foo" is a bare CSS identifier, so it round-trips unquoted.
	if got, want := st.String(), "[x=foo i]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestQuoteValueUnquotesBareIdent(t *testing.T) {
	st := selector.State{
		Attrs: []selector.AttributeAssertion{
			{Key: "x", Op: selector.OpEqual, Value: "abc-123", CaseSensitive: true},
		},
	}
	if got, want := st.String(), "[x=abc-123]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestQuoteValueQuotesNonIdent(t *testing.T) {
	st := selector.State{
		Attrs: []selector.AttributeAssertion{
			{Key: "x", Op: selector.OpEqual, Value: "https://example", CaseSensitive: true},
		},
	}
	if got, want := st.String(), "[x='https://example']"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestQuoteValueWithSingleQuote(t *testing.T) {
	st := selector.State{
		Attrs: []selector.AttributeAssertion{
			{Key: "x", Op: selector.OpEqual, Value: "it's", CaseSensitive: true},
		},
	}
	if got, want := st.String(), `[x="it's"]`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSiblingGroupStringCollapsesToTilde(t *testing.T) {
	g := selector.SiblingGroup{
		{Type: "b"},
		{Type: "a"},
	}
	if got, want := g.String(), "a ~ b"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestChainStringSeparators(t *testing.T) {
	c := selector.Chain{
		{Combinator: selector.CombDescendant, Group: selector.SiblingGroup{{Type: "a"}}},
		{Combinator: selector.CombChild, Group: selector.SiblingGroup{{Type: "b"}}},
		{Combinator: selector.CombSubject, Group: selector.SiblingGroup{{Type: "c"}}},
	}
	if got, want := c.String(), "a b > c"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestUnionSelectorStringJoinsWithComma(t *testing.T) {
	u := selector.UnionSelector{
		{{Combinator: selector.CombSubject, Group: selector.SiblingGroup{{Type: "a"}}}},
		{{Combinator: selector.CombSubject, Group: selector.SiblingGroup{{Type: "b"}}}},
	}
	if got, want := u.String(), "a, b"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestUniversal(t *testing.T) {
	if !(selector.State{}).Universal() {
		t.Fatalf("zero State should be universal")
	}
	if !(selector.State{Type: "*"}).Universal() {
		t.Fatalf("State{Type: \"*\"} should be universal")
	}
	if (selector.State{Type: "div"}).Universal() {
		t.Fatalf("State{Type: \"div\"} should not be universal")
	}
}
