// Package parse implements the Structurer and Compound Extractor (§4.2–4.3 of
// SPEC_FULL.md): it turns the flat token.Token stream produced by
// cssisect/token into the selector.UnionSelector data model that the rest
// of this module operates on.
package parse

import (
	"fmt"

	"cssisect/selector"
	"cssisect/token"
)

// Parse tokenizes and structures a single selector string into its
// UnionSelector representation.
func Parse(sel string) (selector.UnionSelector, error) {
	toks, err := token.Tokenize(sel)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("parse selector %q: empty selector", sel)
	}

	var union selector.UnionSelector
	start := 0
	for i, t := range toks {
		if t.Kind == token.KindComma {
			chain, err := parseBranch(sel, toks[start:i])
			if err != nil {
				return nil, err
			}
			union = append(union, chain)
			start = i + 1
		}
	}
	chain, err := parseBranch(sel, toks[start:])
	if err != nil {
		return nil, err
	}
	union = append(union, chain)

	return union, nil
}

// parseBranch structures one comma-separated branch (no KindComma tokens)
// into a Chain: runs of compound tokens joined into States, States joined
// by sibling combinators into a SiblingGroup, and SiblingGroups joined by
// descendant/child combinators into Entries.
func parseBranch(sel string, toks []token.Token) (selector.Chain, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("parse selector %q: empty selector branch", sel)
	}

	var (
		chain   selector.Chain
		group   selector.SiblingGroup
		buf     []token.Token
		lastWas string // "" at start, "compound", or "combinator"
	)

	flushCompound := func() error {
		if len(buf) == 0 {
			return fmt.Errorf("parse selector %q: missing compound selector", sel)
		}
		st, err := extractCompound(sel, buf)
		if err != nil {
			return err
		}
		// The most recently parsed compound is the one directly linked to
		// whatever follows (the "b" in "a + b"), so it belongs at the front
		// of the group; earlier sibling operands are additional constraints
		// appended after it (§4.6.2 intersects only the first sibling).
		group = append(selector.SiblingGroup{st}, group...)
		buf = nil
		return nil
	}

	for _, t := range toks {
		if t.Kind != token.KindCombinator {
			buf = append(buf, t)
			lastWas = "compound"
			continue
		}
		if lastWas != "compound" {
			return nil, fmt.Errorf("parse selector %q: unexpected combinator %q", sel, t.Content)
		}
		if err := flushCompound(); err != nil {
			return nil, err
		}
		switch t.Content {
		case "+", "~":
			// sibling combinators fold into the current entry's group; §9
			// collapses adjacent and general sibling into one relation.
		case " ", ">":
			comb := selector.CombDescendant
			if t.Content == ">" {
				comb = selector.CombChild
			}
			chain = append(chain, selector.Entry{Combinator: comb, Group: group})
			group = nil
		default:
			return nil, fmt.Errorf("parse selector %q: unknown combinator %q", sel, t.Content)
		}
		lastWas = "combinator"
	}
	if lastWas != "compound" {
		return nil, fmt.Errorf("parse selector %q: selector ends in a combinator", sel)
	}
	if err := flushCompound(); err != nil {
		return nil, err
	}
	chain = append(chain, selector.Entry{Combinator: selector.CombSubject, Group: group})

	return chain, nil
}

// extractCompound folds one run of non-combinator tokens into a State.
func extractCompound(sel string, toks []token.Token) (selector.State, error) {
	var st selector.State
	for _, t := range toks {
		switch t.Kind {
		case token.KindType:
			if st.Type != "" && st.Type != "*" {
				return selector.State{}, fmt.Errorf("parse selector %q: multiple type selectors in one compound", sel)
			}
			st.Type = t.Name
		case token.KindID:
			st.Attrs = append(st.Attrs, selector.AttributeAssertion{
				Key: "id", Op: selector.OpEqual, Value: t.Name, CaseSensitive: true,
			})
		case token.KindClass:
			st.Attrs = append(st.Attrs, selector.AttributeAssertion{
				Key: "class", Op: selector.OpInclude, Value: t.Name, CaseSensitive: true,
			})
		case token.KindAttribute:
			op, caseSensitive := attrOp(t)
			st.Attrs = append(st.Attrs, selector.AttributeAssertion{
				Key: t.Name, Op: op, Value: t.Value, CaseSensitive: caseSensitive,
			})
		case token.KindPseudoClass:
			st.PseudoClasses = append(st.PseudoClasses, selector.PseudoClass{Name: t.Name, Argument: t.Argument})
		case token.KindPseudoElement:
			if st.PseudoElement != "" && st.PseudoElement != t.Name {
				return selector.State{}, fmt.Errorf("parse selector %q: multiple pseudo-elements in one compound", sel)
			}
			st.PseudoElement = t.Name
		default:
			return selector.State{}, fmt.Errorf("parse selector %q: unexpected token %v in compound", sel, t.Kind)
		}
	}
	return st, nil
}

func attrOp(t token.Token) (selector.Op, bool) {
	caseSensitive := t.AttrCase != token.CaseInsensitive

	var op selector.Op
	switch t.Operator {
	case "":
		op = selector.OpExists
	case "=":
		op = selector.OpEqual
	case "~=":
		op = selector.OpInclude
	case "|=":
		op = selector.OpDashMatch
	case "^=":
		op = selector.OpPrefix
	case "$=":
		op = selector.OpSuffix
	case "*=":
		op = selector.OpSubstring
	}
	return op, caseSensitive
}
