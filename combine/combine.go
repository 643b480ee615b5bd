// Package combine implements the Compound Intersector and Chain
// Intersector (§4.5–4.6 of SPEC_FULL.md): the stages that fold two parsed
// selectors down into their structural intersection.
package combine

import (
	"cssisect/attrs"
	"cssisect/selector"
)

// universalPad is the placeholder sibling group substituted for a missing
// ancestor entry during chain length alignment; it constrains nothing.
func universalPad() selector.SiblingGroup {
	return selector.SiblingGroup{selector.State{}}
}

// IntersectStates computes the Compound Intersector (§4.5) for a single
// pair of compound selectors.
func IntersectStates(a, b selector.State) (selector.State, bool) {
	var out selector.State

	switch {
	case a.Type == "" || a.Type == "*":
		out.Type = b.Type
	case b.Type == "" || b.Type == "*":
		out.Type = a.Type
	case a.Type == b.Type:
		out.Type = a.Type
	default:
		return selector.State{}, false
	}

	switch {
	case a.PseudoElement == "":
		out.PseudoElement = b.PseudoElement
	case b.PseudoElement == "":
		out.PseudoElement = a.PseudoElement
	case a.PseudoElement == b.PseudoElement:
		out.PseudoElement = a.PseudoElement
	default:
		return selector.State{}, false
	}

	out.PseudoClasses = unionPseudoClasses(a.PseudoClasses, b.PseudoClasses)

	byKey := make(map[string][]selector.AttributeAssertion)
	var order []string
	for _, at := range a.Attrs {
		if _, seen := byKey[at.Key]; !seen {
			order = append(order, at.Key)
		}
		byKey[at.Key] = append(byKey[at.Key], at)
	}
	for _, at := range b.Attrs {
		if _, seen := byKey[at.Key]; !seen {
			order = append(order, at.Key)
		}
		byKey[at.Key] = append(byKey[at.Key], at)
	}
	for _, k := range order {
		reduced, ok := attrs.Intersect(byKey[k])
		if !ok {
			return selector.State{}, false
		}
		out.Attrs = append(out.Attrs, reduced...)
	}

	return out, true
}

func unionPseudoClasses(a, b []selector.PseudoClass) []selector.PseudoClass {
	type key struct{ name, arg string }
	seen := make(map[key]bool, len(a)+len(b))
	var out []selector.PseudoClass
	for _, pc := range append(append([]selector.PseudoClass{}, a...), b...) {
		k := key{pc.Name, pc.Argument}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, pc)
	}
	return out
}

// intersectGroups implements the "subject intersection" rule shared by the
// CombChild/CombSubject pairing cases (§4.6.2): the first sibling of each
// group is intersected via IntersectStates; the remaining siblings of both
// groups are carried through independently.
func intersectGroups(g1, g2 selector.SiblingGroup) (selector.SiblingGroup, bool) {
	if len(g1) == 0 {
		g1 = universalPad()
	}
	if len(g2) == 0 {
		g2 = universalPad()
	}
	head, ok := IntersectStates(g1[0], g2[0])
	if !ok {
		return nil, false
	}
	out := selector.SiblingGroup{head}
	out = append(out, g1[1:]...)
	out = append(out, g2[1:]...)
	return out, true
}

func isPureUniversal(g selector.SiblingGroup) bool {
	return len(g) == 1 && g[0].Universal()
}

// pairSegment is the result of intersecting one aligned pair of entries: one
// or two output entries, plus whether that pair of entries (when there are
// two) is order-ambiguous and thus a canonical-linearization swap point.
type pairSegment struct {
	entries   []selector.Entry
	swappable bool
}

func pairEntries(e1, e2 selector.Entry) (pairSegment, bool) {
	switch {
	case e1.Combinator == selector.CombSubject && e2.Combinator == selector.CombSubject:
		g, ok := intersectGroups(e1.Group, e2.Group)
		if !ok {
			return pairSegment{}, false
		}
		return pairSegment{entries: []selector.Entry{{Combinator: selector.CombSubject, Group: g}}}, true

	case e1.Combinator == selector.CombChild && e2.Combinator == selector.CombChild:
		g, ok := intersectGroups(e1.Group, e2.Group)
		if !ok {
			return pairSegment{}, false
		}
		return pairSegment{entries: []selector.Entry{{Combinator: selector.CombChild, Group: g}}}, true

	case e1.Combinator == selector.CombDescendant && e2.Combinator == selector.CombDescendant:
		var out []selector.Entry
		if !isPureUniversal(e1.Group) {
			out = append(out, selector.Entry{Combinator: selector.CombDescendant, Group: e1.Group})
		}
		if !isPureUniversal(e2.Group) {
			out = append(out, selector.Entry{Combinator: selector.CombDescendant, Group: e2.Group})
		}
		return pairSegment{entries: out, swappable: len(out) == 2}, true

	case e1.Combinator == selector.CombChild && e2.Combinator == selector.CombDescendant:
		return mixedSegment(e2.Group, e1.Group), true

	case e1.Combinator == selector.CombDescendant && e2.Combinator == selector.CombChild:
		return mixedSegment(e1.Group, e2.Group), true

	default:
		return pairSegment{}, false
	}
}

// mixedSegment builds the two-entry rewrite for a CombChild ∩ CombDescendant
// pairing (§4.6.1): the descendant side is preserved as its own descendant
// entry, the child side as its own child entry.
func mixedSegment(descGroup, childGroup selector.SiblingGroup) pairSegment {
	var out []selector.Entry
	if !isPureUniversal(descGroup) {
		out = append(out, selector.Entry{Combinator: selector.CombDescendant, Group: descGroup})
	}
	out = append(out, selector.Entry{Combinator: selector.CombChild, Group: childGroup})
	return pairSegment{entries: out}
}

// IntersectChains computes the Chain Intersector (§4.6), including length
// alignment and canonical linearization. It returns the set of equivalent
// canonical chain renderings (distinct only by the order of order-ambiguous
// descendant segments), or ok=false when the chains are unsatisfiable.
func IntersectChains(c1, c2 selector.Chain) ([]selector.Chain, bool) {
	c1 = padLeft(c1, len(c2))
	c2 = padLeft(c2, len(c1))

	segments := make([]pairSegment, len(c1))
	for i := range c1 {
		seg, ok := pairEntries(c1[i], c2[i])
		if !ok {
			return nil, false
		}
		segments[i] = seg
	}

	base := make(selector.Chain, 0, len(segments)*2)
	var swapAt []int
	for _, seg := range segments {
		if seg.swappable {
			swapAt = append(swapAt, len(base))
		}
		base = append(base, seg.entries...)
	}

	return linearize(base, swapAt), true
}

func padLeft(c selector.Chain, target int) selector.Chain {
	if len(c) >= target {
		return c
	}
	pad := make(selector.Chain, target-len(c))
	for i := range pad {
		pad[i] = selector.Entry{Combinator: selector.CombDescendant, Group: universalPad()}
	}
	return append(pad, c...)
}

// linearize enumerates the 2^n swap choices across swapAt (each index marks
// a pair of adjacent entries eligible to trade places) and returns the
// variant Chains whose renderings are distinct and non-empty, stably
// ordered by first occurrence.
func linearize(base selector.Chain, swapAt []int) []selector.Chain {
	n := len(swapAt)
	if n == 0 {
		return []selector.Chain{base}
	}
	if n > 12 {
		// Astronomically unlikely in practice; cap enumeration to keep the
		// operation bounded rather than exploding on adversarial input.
		n = 12
		swapAt = swapAt[:n]
	}

	seen := make(map[string]bool)
	var out []selector.Chain
	for mask := 0; mask < (1 << n); mask++ {
		variant := make(selector.Chain, len(base))
		copy(variant, base)
		for bit, idx := range swapAt {
			if mask&(1<<bit) != 0 {
				variant[idx], variant[idx+1] = variant[idx+1], variant[idx]
			}
		}
		s := variant.String()
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, variant)
	}
	if len(out) == 0 {
		return []selector.Chain{base}
	}
	return out
}

// IntersectUnions computes the intersection of two comma-separated
// selectors by distributing intersection over each pair of branches
// (De Morgan-style expansion of the two unions) and flattening the
// results, deduplicated by rendered string, stably ordered by first
// occurrence (§7's "union-of-branches flattening").
func IntersectUnions(u1, u2 selector.UnionSelector) (selector.UnionSelector, bool) {
	seen := make(map[string]bool)
	var out selector.UnionSelector
	for _, c1 := range u1 {
		for _, c2 := range u2 {
			alts, ok := IntersectChains(c1, c2)
			if !ok {
				continue
			}
			for _, alt := range alts {
				s := alt.String()
				if s == "" || seen[s] {
					continue
				}
				seen[s] = true
				out = append(out, alt)
			}
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
