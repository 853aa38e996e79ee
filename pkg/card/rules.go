package card

import "regexp"

// rule pairs a pattern with a handler that turns one match into a value.
// A handler may reject a match, in which case the next match of the same
// pattern is tried before moving on to the next rule.
type rule[T any] struct {
	name    string
	pattern *regexp.Regexp
	apply   func(m []string) (T, bool)
}

// firstMatch runs the rules in order and returns the first accepted value
// together with the name of the rule that produced it.
func firstMatch[T any](rules []rule[T], text string) (T, string, bool) {
	for _, r := range rules {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := r.apply(m); ok {
				return v, r.name, true
			}
		}
	}
	var zero T
	return zero, "", false
}

// constant returns a handler that accepts every match with v.
func constant[T any](v T) func([]string) (T, bool) {
	return func([]string) (T, bool) { return v, true }
}
