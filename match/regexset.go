// Package match decides which samples of a series belong to each named group
// of a group-pair, by searching sample metadata with regular expressions.
package match

import (
	"fmt"
	"regexp"
)

// AttributeRegex is one predicate: Pattern must be found in at least one
// non-empty value of Attribute. Build it with NewAttributeRegex or
// MustAttributeRegex; a value assembled by hand has no compiled pattern and
// matches nothing.
type AttributeRegex struct {
	Attribute string
	Pattern   string
	re        *regexp.Regexp
}

// AttributeRegexSet is the matching condition of one group. All of its
// predicates must hold. Order only affects the order of diagnostics.
type AttributeRegexSet []AttributeRegex

// NewAttributeRegex compiles pattern for attribute.
func NewAttributeRegex(attribute, pattern string) (AttributeRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return AttributeRegex{}, fmt.Errorf("attribute %q: invalid pattern %q: %w", attribute, pattern, err)
	}

	return AttributeRegex{Attribute: attribute, Pattern: pattern, re: re}, nil
}

// MustAttributeRegex is like NewAttributeRegex but panics on a bad pattern.
func MustAttributeRegex(attribute, pattern string) AttributeRegex {
	ar, err := NewAttributeRegex(attribute, pattern)
	if err != nil {
		panic(err)
	}

	return ar
}

// MatchString reports whether the pattern is found anywhere in s.
func (a AttributeRegex) MatchString(s string) bool {
	if a.re == nil {
		return false
	}

	return a.re.MatchString(s)
}

// Get returns the pattern for attribute, if present.
func (s AttributeRegexSet) Get(attribute string) (string, bool) {
	for _, v := range s {
		if v.Attribute == attribute {
			return v.Pattern, true
		}
	}

	return "", false
}

// Group is a named member of a group-pair together with its condition.
type Group struct {
	Name    string
	Regexes AttributeRegexSet
}

// GroupPairSpec is one requested partition of a series' samples, usually a
// "control" and a "treatment" group. Group order is significant.
type GroupPairSpec []Group

// Names lists the group names in declared order.
func (p GroupPairSpec) Names() []string {
	out := make([]string, 0, len(p))
	for _, g := range p {
		out = append(out, g.Name)
	}

	return out
}

func (p GroupPairSpec) String() string {
	out := "{"
	for i, g := range p {
		if i > 0 {
			out += ", "
		}
		out += g.Name + ": {"
		for j, r := range g.Regexes {
			if j > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %q", r.Attribute, r.Pattern)
		}
		out += "}"
	}

	return out + "}"
}
