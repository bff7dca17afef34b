package relevance

import "strings"

// Rule is a hard exclusion predicate. AnyOf rules reject on any keyword hit.
// Context rules reject only when at least one main term and at least one
// forbidden term are both present: "green" alone is legitimate coverage,
// "green" next to "stock" is market chatter.
type Rule struct {
	Name           string
	AnyOf          []string
	MainTerms      []string
	ForbiddenTerms []string
}

// Filter evaluates an ordered rule list against item text. Any match rejects;
// order only determines which rule gets reported.
type Filter struct {
	rules []Rule
}

func NewFilter(rules []Rule) *Filter {
	return &Filter{rules: rules}
}

// Reject reports whether the item should be excluded before scoring, and the
// name of the first rule that matched.
func (f *Filter) Reject(title, description string) (bool, string) {
	content := strings.ToLower(title + " " + description)
	for _, r := range f.rules {
		if r.matches(content) {
			return true, r.Name
		}
	}
	return false, ""
}

func (r Rule) matches(content string) bool {
	if len(r.AnyOf) > 0 {
		return containsAny(content, r.AnyOf)
	}
	return containsAny(content, r.MainTerms) && containsAny(content, r.ForbiddenTerms)
}

func containsAny(content string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(content, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
