// Package attrs implements the Attribute Intersector (§4.4 of
// SPEC_FULL.md) — the hardest subsystem in this module. Given every
// assertion made on a single attribute key across two or more selectors,
// it folds them down to a minimal equivalent conjunction, or reports that
// no element could ever satisfy all of them.
//
// No teacher file in this codebase reasons about attribute selectors at
// all (its own css.Parser explicitly rejects them as unsupported), so this
// package is built directly from the spec's stage-by-stage description;
// only its "small pure fold, never mutate in place" shape follows the rest
// of this module.
package attrs

import (
	"strings"

	"golang.org/x/text/cases"

	"cssisect/selector"
)

var folder = cases.Fold()

func fold(s string) string { return folder.String(s) }

// Intersect reduces assertions (all sharing one attribute key) to a
// minimal equivalent conjunction, or reports ok=false if unsatisfiable.
// An empty input returns (nil, true): no constraint at all.
func Intersect(in []selector.AttributeAssertion) ([]selector.AttributeAssertion, bool) {
	if len(in) == 0 {
		return nil, true
	}
	if len(in) == 1 {
		return []selector.AttributeAssertion{in[0]}, true
	}
	key := in[0].Key

	work, allExistence := existenceElim(in)
	if allExistence {
		return []selector.AttributeAssertion{{Key: key, Op: selector.OpExists}}, true
	}

	var eqs, rest []selector.AttributeAssertion
	for _, a := range work {
		if a.Op == selector.OpEqual {
			eqs = append(eqs, a)
		} else {
			rest = append(rest, a)
		}
	}

	sensEq, insensEq, ok := reconcileEquality(eqs)
	if !ok {
		return nil, false
	}

	var prefixItems, suffixItems, dashItems, includeItems, tokenItems []selector.AttributeAssertion
	for _, a := range rest {
		switch a.Op {
		case selector.OpPrefix:
			prefixItems = append(prefixItems, a)
		case selector.OpSuffix:
			suffixItems = append(suffixItems, a)
		case selector.OpDashMatch:
			dashItems = append(dashItems, a)
		case selector.OpSubstring:
			includeItems = append(includeItems, a)
		case selector.OpInclude:
			tokenItems = append(tokenItems, a)
		}
	}

	prefixRoutine := anchorRoutine{contains: strings.HasPrefix, piped: false}
	suffixRoutine := anchorRoutine{contains: strings.HasSuffix, piped: false}
	dashRoutine := anchorRoutine{contains: strings.HasPrefix, piped: true}

	prefixSens, prefixInsens, ok := reconcileAnchorGroup(prefixItems, prefixRoutine)
	if !ok {
		return nil, false
	}
	suffixSens, suffixInsens, ok := reconcileAnchorGroup(suffixItems, suffixRoutine)
	if !ok {
		return nil, false
	}
	dashSens, dashInsens, ok := reconcileAnchorGroup(dashItems, dashRoutine)
	if !ok {
		return nil, false
	}

	// (e) cross-operator constraints between ^= and |=.
	prefixSens, dashSens, ok = reconcilePrefixDash(prefixSens, dashSens)
	if !ok {
		return nil, false
	}
	prefixInsens, dashInsens, ok = reconcilePrefixDash(prefixInsens, dashInsens)
	if !ok {
		return nil, false
	}

	eqFixed := sensEq != nil || insensEq != nil
	if eqFixed {
		for _, anchor := range []struct {
			routine anchorRoutine
			sens    *string
			insens  *string
		}{
			{prefixRoutine, prefixSens, prefixInsens},
			{suffixRoutine, suffixSens, suffixInsens},
			{dashRoutine, dashSens, dashInsens},
		} {
			if !checkAnchorsAgainstEquality(anchor.routine, anchor.sens, anchor.insens, sensEq, insensEq) {
				return nil, false
			}
		}
		// A case-insensitive equality fixes the value only up to case
		// folding, so it subsumes insensitive anchors but not sensitive ones.
		prefixInsens, suffixInsens, dashInsens = nil, nil, nil
		if sensEq != nil {
			prefixSens, suffixSens, dashSens = nil, nil, nil
		}
	}

	sensIncl, insensIncl := reconcileIncludes(includeItems)
	if !validateIncludesAgainstEquality(sensIncl, insensIncl, sensEq, insensEq) {
		return nil, false
	}
	if eqFixed {
		sensIncl, insensIncl = nil, nil
	}

	tokens := dedupTokens(tokenItems)

	var out []selector.AttributeAssertion
	if sensEq != nil {
		out = append(out, selector.AttributeAssertion{Key: key, Op: selector.OpEqual, Value: *sensEq, CaseSensitive: true})
	} else if insensEq != nil {
		out = append(out, selector.AttributeAssertion{Key: key, Op: selector.OpEqual, Value: *insensEq, CaseSensitive: false})
	}
	appendAnchor := func(op selector.Op, sens, insens *string) {
		if sens != nil {
			out = append(out, selector.AttributeAssertion{Key: key, Op: op, Value: *sens, CaseSensitive: true})
		}
		if insens != nil {
			out = append(out, selector.AttributeAssertion{Key: key, Op: op, Value: *insens, CaseSensitive: false})
		}
	}
	appendAnchor(selector.OpPrefix, prefixSens, prefixInsens)
	appendAnchor(selector.OpSuffix, suffixSens, suffixInsens)
	appendAnchor(selector.OpDashMatch, dashSens, dashInsens)
	for _, v := range sensIncl {
		out = append(out, selector.AttributeAssertion{Key: key, Op: selector.OpSubstring, Value: v, CaseSensitive: true})
	}
	for _, v := range insensIncl {
		out = append(out, selector.AttributeAssertion{Key: key, Op: selector.OpSubstring, Value: v, CaseSensitive: false})
	}
	out = append(out, tokens...)

	return out, true
}

// existenceElim is stage (a): presence-only assertions are dropped once any
// operator-bearing assertion exists; if every assertion is existence-only,
// allExistence is true and work is nil.
func existenceElim(in []selector.AttributeAssertion) (work []selector.AttributeAssertion, allExistence bool) {
	hasOp := false
	for _, a := range in {
		if a.Op != selector.OpExists {
			hasOp = true
			break
		}
	}
	if !hasOp {
		return nil, true
	}
	for _, a := range in {
		if a.Op != selector.OpExists {
			work = append(work, a)
		}
	}
	return work, false
}

// reconcileEquality is stage (b).
func reconcileEquality(eqs []selector.AttributeAssertion) (sensEq, insensEq *string, ok bool) {
	for _, a := range eqs {
		v := a.Value
		if a.CaseSensitive {
			if sensEq != nil && *sensEq != v {
				return nil, nil, false
			}
			if insensEq != nil && fold(v) != *insensEq {
				return nil, nil, false
			}
			cp := v
			sensEq = &cp
		} else {
			fv := fold(v)
			if sensEq != nil && fold(*sensEq) != fv {
				return nil, nil, false
			}
			if insensEq != nil && *insensEq != fv {
				return nil, nil, false
			}
			insensEq = &fv
		}
	}
	return sensEq, insensEq, true
}

type anchorRoutine struct {
	contains func(longer, shorter string) bool
	piped    bool
}

// reconcile combines two values seen for the same operator and case
// bucket, returning whichever is more specific (its satisfy-set is the
// subset), or ok=false when neither anchors the other.
func (r anchorRoutine) reconcile(a, b string) (string, bool) {
	if r.satisfies(a, b) {
		return b, true
	}
	if r.satisfies(b, a) {
		return a, true
	}
	return "", false
}

// satisfies reports whether value meets the anchoring constraint anchorVal
// represents (value already in the appropriate case domain for anchorVal).
func (r anchorRoutine) satisfies(anchorVal, value string) bool {
	if r.piped {
		stripped := strings.TrimSuffix(anchorVal, "-")
		return value == stripped || strings.HasPrefix(value, stripped+"-")
	}
	return r.contains(value, anchorVal)
}

// reconcileAnchorGroup is stage (c)'s per-operator fold: maintains at most
// one sensitive and one insensitive anchor value, folding new assertions in
// one at a time, then checks the two buckets against each other.
func reconcileAnchorGroup(items []selector.AttributeAssertion, r anchorRoutine) (sensitive, insensitive *string, ok bool) {
	for _, a := range items {
		if a.CaseSensitive {
			if sensitive == nil {
				v := a.Value
				sensitive = &v
				continue
			}
			nv, good := r.reconcile(*sensitive, a.Value)
			if !good {
				return nil, nil, false
			}
			sensitive = &nv
		} else {
			fv := fold(a.Value)
			if insensitive == nil {
				insensitive = &fv
				continue
			}
			nv, good := r.reconcile(*insensitive, fv)
			if !good {
				return nil, nil, false
			}
			insensitive = &nv
		}
	}
	if sensitive != nil && insensitive != nil {
		if _, good := r.reconcile(fold(*sensitive), *insensitive); !good {
			return nil, nil, false
		}
	}
	return sensitive, insensitive, true
}

// reconcilePrefixDash is stage (e): ^= and |= anchors on the same case
// bucket must be compatible; the weaker of the two is dropped.
func reconcilePrefixDash(prefix, dash *string) (*string, *string, bool) {
	if prefix == nil || dash == nil {
		return prefix, dash, true
	}
	p := *prefix
	dBase := strings.TrimSuffix(*dash, "-")
	switch {
	case p == dBase:
		return nil, dash, true
	case strings.HasPrefix(p, dBase+"-"):
		return prefix, nil, true
	case strings.HasPrefix(dBase, p):
		return nil, dash, true
	default:
		return nil, nil, false
	}
}

// checkAnchorsAgainstEquality validates an operator's surviving anchors
// against a fixed equality value. Once validated, a case-sensitive equality
// subsumes every anchor on that key and a case-insensitive one subsumes the
// insensitive anchors (the caller drops them afterward).
func checkAnchorsAgainstEquality(r anchorRoutine, sens, insens, sensEq, insensEq *string) bool {
	if sens != nil {
		if sensEq != nil && !r.satisfies(*sens, *sensEq) {
			return false
		}
		if insensEq != nil && !r.satisfies(fold(*sens), *insensEq) {
			return false
		}
	}
	if insens != nil {
		if sensEq != nil && !r.satisfies(*insens, fold(*sensEq)) {
			return false
		}
		if insensEq != nil && !r.satisfies(*insens, *insensEq) {
			return false
		}
	}
	return true
}

// reconcileIncludes is stage (d)'s set maintenance: each incoming *=
// either is already covered by a stricter existing include, replaces a
// weaker one, or is added.
func reconcileIncludes(items []selector.AttributeAssertion) (sensIncl, insensIncl []string) {
	for _, a := range items {
		if a.CaseSensitive {
			sensIncl = mergeInclude(sensIncl, a.Value, strings.Contains)
		} else {
			fv := fold(a.Value)
			rejected := false
			for _, e := range sensIncl {
				if strings.Contains(fold(e), fv) {
					rejected = true
					break
				}
			}
			if rejected {
				continue
			}
			insensIncl = mergeInclude(insensIncl, fv, strings.Contains)
		}
	}
	return sensIncl, insensIncl
}

func mergeInclude(set []string, v string, contains func(haystack, needle string) bool) []string {
	for _, e := range set {
		if contains(e, v) {
			return set // v is already covered by a stricter existing include
		}
	}
	kept := make([]string, 0, len(set)+1)
	for _, e := range set {
		if !contains(v, e) {
			kept = append(kept, e)
		}
	}
	kept = append(kept, v)
	return kept
}

func validateIncludesAgainstEquality(sensIncl, insensIncl []string, sensEq, insensEq *string) bool {
	for _, e := range sensIncl {
		switch {
		case sensEq != nil:
			if !strings.Contains(*sensEq, e) {
				return false
			}
		case insensEq != nil:
			if !strings.Contains(*insensEq, fold(e)) {
				return false
			}
		}
	}
	for _, e := range insensIncl {
		switch {
		case sensEq != nil:
			if !strings.Contains(fold(*sensEq), e) {
				return false
			}
		case insensEq != nil:
			if !strings.Contains(*insensEq, e) {
				return false
			}
		}
	}
	return true
}

// dedupTokens is stage (f): ~= assertions are independent membership
// tests, deduplicated only by (value, case-sensitivity).
func dedupTokens(items []selector.AttributeAssertion) []selector.AttributeAssertion {
	type tk struct {
		v  string
		cs bool
	}
	seen := make(map[tk]bool, len(items))
	var out []selector.AttributeAssertion
	for _, a := range items {
		k := tk{a.Value, a.CaseSensitive}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
