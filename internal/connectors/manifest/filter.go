package manifest

import (
	"regexp"

	"github.com/custodia-labs/ctxport/internal/logger"
)

type compiledRule struct {
	SkipRule
	re *regexp.Regexp
}

// compileRules prepares skip rules once per adapter. An invalid pattern
// disables only the pattern condition of its rule and is reported through
// the logger warning channel.
func compileRules(m *Manifest) []compiledRule {
	rules := make([]compiledRule, 0, len(m.Filters.SkipWhen))
	for _, r := range m.Filters.SkipWhen {
		cr := compiledRule{SkipRule: r}
		if r.MatchesPattern != "" {
			re, err := regexp.Compile(r.MatchesPattern)
			if err != nil {
				logger.Warn("%s: ignoring skip rule on %q: invalid pattern %q: %v",
					m.ID, r.Field, r.MatchesPattern, err)
			} else {
				cr.re = re
			}
		}
		rules = append(rules, cr)
	}
	return rules
}

func (r compiledRule) matches(msg any) bool {
	value, found := GetByPath(msg, r.Field)
	present := found && value != nil

	if r.Equals != nil && found && valuesEqual(value, r.Equals) {
		return true
	}
	if r.Exists != nil && *r.Exists == present {
		return true
	}
	if r.re != nil {
		if s, ok := value.(string); ok && r.re.MatchString(s) {
			return true
		}
	}
	return false
}

func shouldSkip(rules []compiledRule, msg any) bool {
	for _, r := range rules {
		if r.matches(msg) {
			return true
		}
	}
	return false
}

// valuesEqual compares decoded JSON scalars with a manifest value,
// treating all numeric types alike. Containers never compare equal.
func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
