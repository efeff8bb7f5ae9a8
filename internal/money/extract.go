// Package money finds sums of money in colloquial Czech text, normalizes them,
// classifies them into reward tiers and composes the reply message.
package money

import "strings"

// Mention is one monetary amount found in text.
type Mention struct {
	// Span is the matched substring in its original casing.
	Span  string  `json:"span"`
	Value float64 `json:"value"`
}

// Outcome is the result of Extract. It is either Keyword or Values.
type Outcome interface {
	outcome()
}

// Keyword means the text had no amount but named the trigger word.
type Keyword struct{}

// Values holds distinct mentions in order of first appearance.
type Values struct {
	Mentions []Mention
}

func (Keyword) outcome() {}

func (Values) outcome() {}

// Extract scans text for monetary mentions. ok is false when the text holds
// neither a mention nor a trigger keyword.
func Extract(text string) (out Outcome, ok bool) {
	text = strings.ToValidUTF8(text, "\uFFFD")
	folded := foldCase(text)

	ranges := Scan(folded)
	if len(ranges) == 0 {
		if HasKeyword(folded) {
			return Keyword{}, true
		}
		return nil, false
	}

	var d dedup
	for _, r := range ranges {
		value, valid := CanonicalValue(folded[r[0]:r[1]])
		if !valid {
			continue
		}
		d.add(Mention{Span: strings.TrimSpace(text[r[0]:r[1]]), Value: value})
	}
	if len(d.mentions) == 0 {
		return nil, false
	}
	return Values{Mentions: d.mentions}, true
}

// dedup keeps the first mention of each canonical value.
type dedup struct {
	seen     map[float64]struct{}
	mentions []Mention
}

func (d *dedup) add(m Mention) bool {
	if d.seen == nil {
		d.seen = map[float64]struct{}{}
	}
	if _, ok := d.seen[m.Value]; ok {
		return false
	}
	d.seen[m.Value] = struct{}{}
	d.mentions = append(d.mentions, m)
	return true
}
