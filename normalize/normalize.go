// Package normalize coerces free-form model text into the structured record
// contract. Normalize never fails: replies that do not parse are turned into
// a Fallback result carrying the raw text as content.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/hupe1980/cotmesh/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Flavor selects the record shape expected from a backend.
type Flavor int

const (
	// Decomposer records carry response and isSolution.
	Decomposer Flavor = iota
	// Solver records carry only response.
	Solver
)

// String returns the agent label used in repair messages.
func (f Flavor) String() string {
	if f == Solver {
		return "Agent B"
	}
	return "Agent A"
}

// Field names of the wire contract.
const (
	FieldResponse   = "response"
	FieldContent    = "content"
	FieldIsSolution = "isSolution"
)

var (
	leadingFence  = regexp.MustCompile("^\\s*```[a-zA-Z0-9_+-]*[ \\t]*\\n?")
	trailingFence = regexp.MustCompile("\\n?[ \\t]*```\\s*$")
	boldText      = regexp.MustCompile(`\*\*.*?\*\*\s*`)
	headingLine   = regexp.MustCompile(`(?m)^[ \t]*#.*(?:\n|$)`)
	finalCaption  = regexp.MustCompile(`(?i)Final Solution:.*(?:\n|$)`)
	objectSpan    = regexp.MustCompile(`(?s)\{.*\}`)
)

// Result is the outcome of normalizing one reply. Parsed and Fallback expose
// the same accessors so callers can use the record without branching.
type Result interface {
	// Record returns the normalized record. Content is never empty.
	Record() core.Record
	// Parsed reports whether the reply decoded as a structured object.
	Parsed() bool
}

// Parsed is a reply that decoded as a JSON object.
type Parsed struct {
	record core.Record
	// Fields holds every decoded key, including ones outside the contract.
	Fields map[string]any
}

// Record implements Result.
func (p Parsed) Record() core.Record { return p.record }

// Parsed implements Result.
func (Parsed) Parsed() bool { return true }

// Fallback is a reply that could not be decoded.
type Fallback struct {
	record core.Record
	// Err is the decode error.
	Err error
}

// Record implements Result.
func (f Fallback) Record() core.Record { return f.record }

// Parsed implements Result.
func (Fallback) Parsed() bool { return false }

// Normalize extracts a structured record from raw model text.
func Normalize(raw string, flavor Flavor) Result {
	return NormalizeWithDefault(raw, flavor, false)
}

// NormalizeWithDefault is Normalize with an explicit isSolution default used
// when a Decomposer reply parses but omits the flag.
func NormalizeWithDefault(raw string, flavor Flavor, solutionDefault bool) Result {
	candidate := Extract(raw)

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return newFallback(raw, flavor, err)
	}
	if fields == nil {
		return newFallback(raw, flavor, fmt.Errorf("decoded null instead of an object"))
	}

	rec := core.Record{}
	if content, ok := contentField(fields); ok {
		rec.Content = content
	} else {
		rec.Content = fmt.Sprintf("Error: Missing response field in %s output", flavor)
	}
	if flavor == Decomposer {
		flag, ok := boolField(fields[FieldIsSolution])
		if !ok {
			flag = solutionDefault
		}
		rec.SetSolution(flag)
	}

	return Parsed{record: rec, Fields: fields}
}

func newFallback(raw string, flavor Flavor, err error) Fallback {
	content := validUTF8(raw)
	if strings.TrimSpace(content) == "" {
		content = "Error parsing response: empty reply"
	}
	rec := core.Record{Content: content}
	if flavor == Decomposer {
		rec.SetSolution(false)
	}
	return Fallback{record: rec, Err: err}
}

// Extract returns the candidate JSON text of a raw reply: fences and
// captions are stripped, the first greedy brace span is selected and stray
// backticks are removed.
//
// When the reply holds several brace groups the span runs from the first
// '{' to the last '}', so trailing prose between them is kept.
func Extract(raw string) string {
	text := StripFences(raw)
	text = stripCaptions(text)

	if m := objectSpan.FindString(text); m != "" {
		text = m
	}

	text = strings.ReplaceAll(text, "`", "")
	return strings.TrimSpace(text)
}

// StripFences removes a leading and a trailing fenced code block marker.
func StripFences(text string) string {
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return text
}

// stripCaptions drops emphasis, headings and "Final Solution:" captions that
// precede the first '{'. Text from the first brace on is left untouched.
func stripCaptions(text string) string {
	idx := strings.Index(text, "{")
	if idx < 0 {
		return cleanCaption(text)
	}
	return cleanCaption(text[:idx]) + text[idx:]
}

func cleanCaption(s string) string {
	s = boldText.ReplaceAllString(s, "")
	s = headingLine.ReplaceAllString(s, "")
	s = finalCaption.ReplaceAllString(s, "")
	return s
}

func contentField(fields map[string]any) (string, bool) {
	for _, key := range []string{FieldResponse, FieldContent} {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			if strings.TrimSpace(tv) == "" {
				continue
			}
			return validUTF8(tv), true
		default:
			b, err := json.Marshal(tv)
			if err != nil {
				return fmt.Sprint(tv), true
			}
			return string(b), true
		}
	}
	return "", false
}

// validUTF8 replaces invalid byte sequences so content re-marshals cleanly
// into history.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func boolField(v any) (bool, bool) {
	switch tv := v.(type) {
	case bool:
		return tv, true
	case string:
		switch strings.ToLower(strings.TrimSpace(tv)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}
