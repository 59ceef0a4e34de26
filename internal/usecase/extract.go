package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extraction is an ordered cascade of independent matchers over the
// current turn's text only: first match wins, no match is an ordinary empty
// result. These are keyword heuristics, not NLU.

const (
	minAge = 1
	maxAge = 120
)

var (
	// Lead-in phrase is case-insensitive; the captured name must be 1-3
	// capitalized words.
	nameLeadIn = regexp.MustCompile(`(?i:i'?m|i am|my name is|name is|called|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})`)
	bareName   = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}$`)

	ageLeadIn   = regexp.MustCompile(`(?i)(?:i am|age is|i'?m|years? old)\s+(\d{1,3})`)
	ageAnywhere = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?|yrs?|old)?\b`)
	ageBare     = regexp.MustCompile(`^(\d{1,3})$`)

	digitRuns = regexp.MustCompile(`\d+`)
)

// extractName pulls a 1-3 word capitalized name out of text, either after a
// lead-in phrase ("my name is X", "I'm X") or as the entire message. Returns
// "" when nothing matches.
func extractName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if m := nameLeadIn.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if bareName.MatchString(text) {
		return text
	}
	return ""
}

// extractAge pulls an age in [1,120] out of text. Each pattern is tried in
// turn; a hit outside the valid range counts as a miss for that pattern so
// later ones still get a chance. Returns 0 when nothing matches.
func extractAge(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	for _, re := range []*regexp.Regexp{ageLeadIn, ageAnywhere, ageBare} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= minAge && n <= maxAge {
			return n
		}
	}
	return 0
}

// findNumbers returns every run of digits in text, in order. Used by the
// age force-advance fallback after the retry budget is exhausted.
func findNumbers(text string) []int {
	var nums []int
	for _, run := range digitRuns.FindAllString(text, -1) {
		n, err := strconv.Atoi(run)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// orDefault returns the trimmed text, or def when the text is empty. Location
// and food requirement are open-ended fields with no extractable grammar, so
// the raw message is accepted as-is.
func orDefault(text, def string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return def
}
