package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// filterTimeout bounds a single rule ID match.
const filterTimeout = 100 * time.Millisecond

// FilterConfig holds include and exclude expressions over rule IDs.
type FilterConfig struct {
	Include []string // only matching rules are kept
	Exclude []string // matching rules are dropped
}

// ParsePatterns splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func ParsePatterns(patterns string) []string {
	result := []string{}
	for _, p := range strings.Split(patterns, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter keeps the rules whose IDs match an include expression (all rules
// when there are none), then drops those matching an exclude expression.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	if len(rules) == 0 {
		return rules, nil
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if len(include) > 0 && !matchesAny(r.ID, include) {
			continue
		}
		if matchesAny(r.ID, exclude) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func compileAll(exprs []string) ([]*regexp2.Regexp, error) {
	res := make([]*regexp2.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp2.Compile(expr, regexp2.RE2)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", expr, err)
		}
		re.MatchTimeout = filterTimeout
		res = append(res, re)
	}
	return res, nil
}

func matchesAny(id string, res []*regexp2.Regexp) bool {
	for _, re := range res {
		// A timeout counts as no match.
		if ok, err := re.MatchString(id); err == nil && ok {
			return true
		}
	}
	return false
}
