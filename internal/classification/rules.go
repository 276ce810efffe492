// Package classification assigns spending categories to transactions through
// an ordered fallback chain: user corrections, rule patterns, and an optional
// fallback classifier.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule is a category pattern matched against transaction text.
type Rule struct {
	Name        string
	Category    string
	Subcategory string
	Regex       string
	Priority    int // Higher priority rules are checked first
}

type compiledRule struct {
	re *regexp.Regexp
	Rule
}

// RuleSet is an immutable, priority-ordered list of compiled rules.
type RuleSet struct {
	rules []compiledRule
}

// RuleMatch is the first rule that matched a transaction.
type RuleMatch struct {
	RuleName    string
	Category    string
	Subcategory string
}

// NewRuleSet compiles rules. Matching is case-insensitive. Rules with equal
// priority keep their input order.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		if r.Category == "" {
			return nil, fmt.Errorf("rule %s has no category", r.Name)
		}

		regexStr := r.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		re, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}

		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &RuleSet{rules: compiled}, nil
}

// Match returns the first matching rule for the given text fragments, or nil.
func (rs *RuleSet) Match(fragments ...string) *RuleMatch {
	searchText := strings.Join(fragments, " ")
	if strings.TrimSpace(searchText) == "" {
		return nil
	}

	for _, rule := range rs.rules {
		if rule.re.MatchString(searchText) {
			return &RuleMatch{
				RuleName:    rule.Name,
				Category:    rule.Category,
				Subcategory: rule.Subcategory,
			}
		}
	}

	return nil
}

// Len returns the number of loaded rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
