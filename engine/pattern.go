package engine

import (
	"regexp"
	"strings"
)

// patternMatcher counts one tracker pattern in document text.
type patternMatcher struct {
	literal string
	re      *regexp.Regexp
}

// compilePattern prepares pattern for counting. An invalid regex returns a
// *PatternError; an empty pattern yields a matcher that never matches.
func compilePattern(pattern string, useRegex bool) (*patternMatcher, error) {
	if !useRegex || pattern == "" {
		return &patternMatcher{literal: pattern}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return &patternMatcher{re: re}, nil
}

func (m *patternMatcher) count(content string) int {
	switch {
	case m == nil:
		return 0
	case m.re != nil:
		return len(m.re.FindAllStringIndex(content, -1))
	case m.literal == "":
		return 0
	default:
		return strings.Count(content, m.literal)
	}
}

// CountPatternMatches counts occurrences of pattern in content.
// Literal patterns count non-overlapping occurrences; regex patterns count
// every non-overlapping match. An invalid regex yields 0 and a *PatternError.
// An empty pattern never matches.
func CountPatternMatches(content, pattern string, useRegex bool) (int, error) {
	m, err := compilePattern(pattern, useRegex)
	if err != nil {
		return 0, err
	}
	return m.count(content), nil
}
