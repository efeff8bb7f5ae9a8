package money

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// mentionPattern lists the three shapes of a monetary mention in folded text.
// Alternatives are tried left to right at each position, so a currency suffix
// wins over the bare "k" shorthand ("100kc" is never read as "100k").
var mentionPattern = regexp.MustCompile(
	`[0-9]+(?:[ ,.]?[0-9]+)*[ ,.]?(?:kc|kč|czk|korun|mega)` +
		`|[0-9]+(?:[,.][0-9]+)?k` +
		`|[0-9]+(?:[ ,.]?[0-9]+)*,-`)

// flatSuffix is the "100,-" idiom: a round amount with no further unit.
const flatSuffix = ",-"

// Scan returns the byte ranges of monetary mentions in folded text, left to
// right and non-overlapping. Candidates glued to surrounding words or digits
// are rejected and the scan resumes one rune later.
func Scan(folded string) [][2]int {
	var out [][2]int
	pos := 0
	for pos < len(folded) {
		loc := mentionPattern.FindStringIndex(folded[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if !boundaryBefore(folded, start) || !boundaryAfter(folded, start, end) {
			_, size := utf8.DecodeRuneInString(folded[start:])
			pos = start + size
			continue
		}
		out = append(out, [2]int{start, end})
		pos = end
	}
	return out
}

// scanStrings is Scan returning the trimmed matched substrings.
func scanStrings(folded string) []string {
	ranges := Scan(folded)
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, strings.TrimSpace(folded[r[0]:r[1]]))
	}
	return out
}

func boundaryBefore(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, size := utf8.DecodeLastRuneInString(text[:start])
	if isWordRune(r) {
		return false
	}
	if r == '.' || r == ',' {
		// "5,5km" must not yield "5k" from its tail.
		prev, _ := utf8.DecodeLastRuneInString(text[:start-size])
		return !unicode.IsDigit(prev)
	}
	return true
}

func boundaryAfter(text string, start, end int) bool {
	if strings.HasSuffix(text[start:end], flatSuffix) || end == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// foldCase lowercases s rune by rune, keeping any rune whose lowercase form
// has a different UTF-8 width. Byte offsets into the result are therefore
// valid offsets into s.
func foldCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			l = r
		}
		b.WriteRune(l)
	}
	return b.String()
}
