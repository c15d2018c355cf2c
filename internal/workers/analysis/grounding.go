package analysis

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an the i i'm im me my mine we our you your it its this that these those
		and or but if so as than then of in on at by for with from to into about over
		is am are was were be been being do does did done have has had
		should would could might can will shall must may
		not no yes just really very quite some any
		what which who whom how why when where whether either both between
		think want feel get got lot lots thing things`) {
		stopwords[w] = struct{}{}
	}
}

// contentTokens lowercases s, splits on anything that is not a letter or
// digit, and drops stopwords.
func contentTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// sameStem treats two tokens as related when they share a prefix of
// min(len(a), len(b), 5) runes and that prefix is at least 3 runes long.
// Shorter tokens must match exactly.
func sameStem(a, b string) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb), 5)
	if n < 3 {
		return false
	}
	return string(ra[:n]) == string(rb[:n])
}

// grounded reports whether every content token of label stem-matches a
// token of the input. A label made only of stopwords is not grounded.
func grounded(label string, inputTokens []string) bool {
	tokens := contentTokens(label)
	if len(tokens) == 0 {
		return false
	}
	for _, lt := range tokens {
		if !mentioned(lt, inputTokens) {
			return false
		}
	}
	return true
}

func mentioned(token string, inputTokens []string) bool {
	for _, it := range inputTokens {
		if sameStem(token, it) {
			return true
		}
	}
	return false
}

// groundDecisions splits decisions into those traceable to input and those
// that are not, preserving order.
func groundDecisions(input string, decisions []string) (kept, dropped []string) {
	tokens := contentTokens(input)
	for _, d := range decisions {
		if grounded(d, tokens) {
			kept = append(kept, d)
		} else {
			dropped = append(dropped, d)
		}
	}
	return kept, dropped
}
