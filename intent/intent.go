// Package intent decides whether a Decomposer record is a final solution and
// repairs solutions that only describe what should be written.
package intent

import (
	"regexp"
	"strings"

	"github.com/hupe1980/cotmesh/core"
)

var (
	// answerAssignment matches a direct numeric answer such as "x = 4". It is
	// not anchored to a word start, so "max = 4" matches as well.
	answerAssignment = regexp.MustCompile(`x\s*=\s*-?\d+`)

	evasivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)provide the (?:python )?code`),
		regexp.MustCompile(`(?i)write (?:the|a) (?:python )?(?:function|code)`),
		regexp.MustCompile(`(?i)implement (?:the|a)`),
		regexp.MustCompile(`(?i)what is the (?:python )?code`),
		regexp.MustCompile(`(?i)how would you`),
	}
)

// Classify reports whether rec is a solution. A record that is not flagged
// but whose content contains an answer assignment is promoted in place.
func Classify(rec *core.Record) bool {
	if rec == nil {
		return false
	}
	if rec.Solution() {
		return true
	}
	if answerAssignment.MatchString(rec.Content) {
		rec.SetSolution(true)
		return true
	}
	return false
}

// IsEvasive reports whether content asks for the solution instead of giving it.
func IsEvasive(content string) bool {
	for _, re := range evasivePatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// HasAssignment reports whether text contains a literal "x =" or "x=".
func HasAssignment(text string) bool {
	return strings.Contains(text, "x =") || strings.Contains(text, "x=")
}
