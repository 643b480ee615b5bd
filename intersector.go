// Package cssisect computes the intersection of CSS selectors: given two or
// more selector strings, it returns a single selector string whose matched
// element set equals the intersection of the inputs' matched sets, or ""
// when the intersection is provably empty.
package cssisect

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssisect/combine"
	"cssisect/parse"
	"cssisect/selector"
)

// Option configures an Intersector.
type Option func(*Intersector)

// WithLogger attaches a logger for optional Debug-level diagnostics. A nil
// logger (or omitting the option) uses zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(i *Intersector) {
		if log != nil {
			i.log = log
		}
	}
}

// Intersector holds configuration for repeated Intersect calls. It carries
// no mutable state beyond its logger and is safe for concurrent use.
type Intersector struct {
	log *zap.Logger
}

// NewIntersector builds an Intersector with the given options applied.
func NewIntersector(opts ...Option) *Intersector {
	i := &Intersector{log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Intersect is the package-level convenience form, using a no-op logger.
func Intersect(selectors ...string) (string, error) {
	return NewIntersector().Intersect(selectors...)
}

// Intersect computes the intersection of one or more selector strings. A
// single selector is returned unchanged after a parse/stringify round-trip.
// An unsatisfiable intersection is reported as ("", nil), not an error.
func (i *Intersector) Intersect(selectors ...string) (string, error) {
	if len(selectors) == 0 {
		return "", fmt.Errorf("cssisect: Intersect requires at least one selector")
	}

	var (
		parsed []selector.UnionSelector
		errs   error
	)
	for idx, sel := range selectors {
		u, err := parse.Parse(sel)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("selector %d (%q): %w", idx, sel, err))
			continue
		}
		parsed = append(parsed, u)
	}
	if errs != nil {
		return "", errs
	}

	i.log.Debug("parsed selectors", zap.Int("count", len(parsed)))

	acc := parsed[0]
	for _, next := range parsed[1:] {
		result, ok := combine.IntersectUnions(acc, next)
		if !ok {
			i.log.Debug("intersection is unsatisfiable")
			return "", nil
		}
		acc = result
	}

	i.log.Debug("intersection computed", zap.Int("branches", len(acc)))
	return acc.String(), nil
}
