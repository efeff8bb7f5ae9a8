package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the trailing token of a mention.
type Unit int

const (
	// UnitCurrency covers currency names (kc, kč, czk, korun).
	UnitCurrency Unit = iota
	// UnitThousand is the "k" shorthand.
	UnitThousand
	// UnitMillion is the "mega" shorthand.
	UnitMillion
	// UnitFlat is the ",-" idiom.
	UnitFlat
)

var numeralPattern = regexp.MustCompile(`[0-9](?:[0-9 ,.]*[0-9])?`)

// ParseUnit maps a unit token to its Unit. Unknown tokens count as currency.
func ParseUnit(token string) Unit {
	switch strings.TrimSpace(token) {
	case "k":
		return UnitThousand
	case "mega":
		return UnitMillion
	case flatSuffix:
		return UnitFlat
	default:
		return UnitCurrency
	}
}

// Multiplier returns the factor the unit applies to the numeral.
func (u Unit) Multiplier() float64 {
	switch u {
	case UnitThousand:
		return 1_000
	case UnitMillion:
		return 1_000_000
	default:
		return 1
	}
}

// Shorthand reports whether the unit is a magnitude suffix rather than a
// currency. Shorthand numerals read a comma as the decimal point and keep
// periods as decimals too ("1.5k", "1,5k").
func (u Unit) Shorthand() bool {
	return u == UnitThousand || u == UnitMillion
}

func (u Unit) String() string {
	switch u {
	case UnitThousand:
		return "k"
	case UnitMillion:
		return "mega"
	case UnitFlat:
		return flatSuffix
	default:
		return "currency"
	}
}

// splitMention separates the numeral from the unit token of a raw mention.
func splitMention(raw string) (numeral string, unit Unit, ok bool) {
	loc := numeralPattern.FindStringIndex(raw)
	if loc == nil {
		return "", UnitCurrency, false
	}
	rest := strings.TrimSpace(raw[loc[1]:])
	if rest != flatSuffix {
		rest = strings.TrimLeft(rest, " ,.")
	}
	return raw[loc[0]:loc[1]], ParseUnit(rest), true
}

// NormalizeValue returns the base magnitude of a raw mention before the unit
// multiplier is applied. Which punctuation is grouping and which is the
// decimal point depends on the unit of the same mention:
//
//	"1,5k"          -> 1.5
//	"3.000.000 kc"  -> 3000000
//	"42,50 kc"      -> 42.5
//	"1.234,50 kc"   -> 1234.5
//
// ok is false when the numeral does not parse or is zero.
func NormalizeValue(raw string) (value float64, ok bool) {
	numeral, unit, found := splitMention(strings.TrimSpace(raw))
	if !found {
		return 0, false
	}

	var cleaned string
	switch {
	case unit.Shorthand():
		cleaned = strings.ReplaceAll(strings.ReplaceAll(numeral, " ", ""), ",", ".")
	case !strings.Contains(numeral, ","):
		cleaned = stripGrouping(numeral)
	default:
		i := strings.LastIndex(numeral, ",")
		whole := stripGrouping(strings.ReplaceAll(numeral[:i], ",", ""))
		frac := strings.ReplaceAll(numeral[i+1:], " ", "")
		cleaned = whole + "." + frac
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed <= 0 || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

// ResolveMultiplier applies the unit of raw to a normalized base magnitude.
func ResolveMultiplier(raw string, base float64) float64 {
	_, unit, ok := splitMention(strings.TrimSpace(raw))
	if !ok {
		return base
	}
	return base * unit.Multiplier()
}

// CanonicalValue runs NormalizeValue and ResolveMultiplier on one mention.
func CanonicalValue(raw string) (float64, bool) {
	base, ok := NormalizeValue(raw)
	if !ok {
		return 0, false
	}
	value := ResolveMultiplier(raw, base)
	if value <= 0 || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func stripGrouping(s string) string {
	return strings.NewReplacer(" ", "", ".", "").Replace(s)
}
