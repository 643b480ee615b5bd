package selector

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// String renders a compound selector to canonical CSS (§4.7): type,
// pseudo-element, classes, remaining attributes, pseudo-classes, then ids.
// Classes, attributes, and ids are each sorted lexically within their group
// so that output doesn't depend on construction order; pseudo-classes are
// opaque labels (§1) so they render in encounter order instead, matching
// the worked example at SPEC_FULL.md §8 scenario 7.
func (s State) String() string {
	var b strings.Builder

	if s.Type != "" {
		b.WriteString(s.Type)
	}
	if s.PseudoElement != "" {
		b.WriteString("::")
		b.WriteString(s.PseudoElement)
	}

	var classes, ids []string
	var attrs []string
	for _, a := range s.Attrs {
		switch {
		case a.Key == "class" && a.Op == OpInclude && a.CaseSensitive:
			classes = append(classes, a.Value)
		case a.Key == "id" && a.Op == OpEqual && a.CaseSensitive:
			ids = append(ids, a.Value)
		default:
			attrs = append(attrs, renderAttr(a))
		}
	}
	sort.Strings(classes)
	sort.Strings(attrs)
	sort.Strings(ids)

	for _, c := range classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	for _, a := range attrs {
		b.WriteString(a)
	}

	for _, pc := range s.PseudoClasses {
		b.WriteString(renderPseudoClass(pc))
	}

	for _, id := range ids {
		b.WriteByte('#')
		b.WriteString(id)
	}

	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}

func renderAttr(a AttributeAssertion) string {
	if a.Op == OpExists {
		return "[" + a.Key + "]"
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(a.Key)
	b.WriteString(a.Op.String())
	b.WriteString(quoteValue(a.Value))
	if !a.CaseSensitive {
		b.WriteString(" i")
	}
	b.WriteByte(']')
	return b.String()
}

func renderPseudoClass(pc PseudoClass) string {
	if pc.Argument == "" {
		return ":" + pc.Name
	}
	return ":" + pc.Name + "(" + pc.Argument + ")"
}

// quoteValue renders an attribute value so it round-trips through the
// tokenizer: unquoted when it is itself a valid bare identifier, else
// single-quoted, unless the value contains a single quote, in which case
// it is double-quoted.
func quoteValue(v string) string {
	if isBareIdent(v) {
		return v
	}
	if strings.Contains(v, "'") {
		return strconv.Quote(v)
	}
	return "'" + v + "'"
}

// isBareIdent reports whether v can be written as an attribute value with
// no surrounding quotes: a CSS identifier, optionally preceded by one '-',
// starting with a letter/underscore/non-ASCII character and continuing
// with letters, digits, underscores, hyphens, or non-ASCII characters.
func isBareIdent(v string) bool {
	if v == "" {
		return false
	}
	runes := []rune(v)
	i := 0
	if runes[0] == '-' {
		i = 1
		if len(runes) == 1 {
			return false
		}
	}
	if !isIdentStart(runes[i]) {
		return false
	}
	for _, r := range runes[i+1:] {
		if !isIdentStart(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r >= 0x80
}

// String renders a sibling group, joining its members by the collapsed
// sibling combinator (§9: adjacent and general sibling are never
// distinguished in output).
func (g SiblingGroup) String() string {
	parts := make([]string, len(g))
	for i, st := range g {
		parts[i] = st.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " ~ ")
}

// String renders a full combinator chain left-to-right.
func (c Chain) String() string {
	var parts []string
	for _, e := range c {
		parts = append(parts, e.Group.String())
	}
	var b strings.Builder
	for i, e := range c {
		b.WriteString(parts[i])
		if i < len(c)-1 {
			switch e.Combinator {
			case CombChild:
				b.WriteString(" > ")
			default:
				b.WriteString(" ")
			}
		}
	}
	return b.String()
}

// String renders a union of chains, comma-separated.
func (u UnionSelector) String() string {
	parts := make([]string, len(u))
	for i, c := range u {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
