package domain

import (
	"github.com/bmatcuk/doublestar/v4"

	m "testgate.dev/pkg/testgate/internal/model"
)

// MatchRules evaluates an ordered include/exclude rule list against a path.
// Rules are applied in order and the last matching rule wins, so an
// exclusion placed after an inclusion removes paths the inclusion retained.
// Patterns are validated at load time; a glob that still fails to evaluate
// simply does not match.
func MatchRules(rules []m.PatternRule, path m.Path) bool {
	matched := false

	for _, rule := range rules {
		ok, err := doublestar.Match(rule.Glob, string(path))
		if err != nil || !ok {
			continue
		}

		matched = !rule.Exclude
	}

	return matched
}
