package money

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	signature    = "^(Jsem bot, doufam, ze poskytnuta informace byla uzitecna. Podnety - Stiznosti - QA na r/branicek)"
	notEvenOne   = "Je mi to lito, ale to neni ani na jeden 2L Branik ve sleve"
	blockDivider = "\n\n"
)

// Compose renders the reply for an outcome: a quoted mention and its tier line
// per mention, or the current price for a keyword hit, followed by the
// signature. A nil outcome renders nothing.
func Compose(out Outcome, unitPrice float64) string {
	var blocks []string
	switch o := out.(type) {
	case Keyword:
		blocks = append(blocks, PriceLine(unitPrice))
	case Values:
		for _, m := range o.Mentions {
			blocks = append(blocks, "> "+m.Span, TierLine(Classify(m.Value, unitPrice)))
		}
	default:
		return ""
	}
	blocks = append(blocks, signature)
	return strings.Join(blocks, blockDivider)
}

// TierLine renders one tier as a sentence with Czech number agreement.
func TierLine(t Tier) string {
	switch v := t.(type) {
	case Single:
		if v.Count == 0 {
			return notEvenOne
		}
		return fmt.Sprintf("To je dost na %d 2L %s ve sleve!", v.Count,
			plural(v.Count, "Branika", "Braniky", "Braniku"))
	case Pack:
		return fmt.Sprintf("To je dost na %d %s 2L Branika ve sleve!", v.Packs,
			plural(v.Packs, "balik", "baliky", "baliku"))
	case Bulk:
		return fmt.Sprintf("To je dost na vic jak %d %s (%d baliku) 2L Branika ve sleve!", v.Pallets,
			plural(v.Pallets, "paletu", "palety", "palet"), v.Packs)
	default:
		return ""
	}
}

// PriceLine states the current unit price, e.g. "... je 39,90 Kc".
func PriceLine(unitPrice float64) string {
	price := strconv.FormatFloat(unitPrice, 'f', 2, 64)
	return fmt.Sprintf("Aktualni cena 2L Branika ve sleve je %s Kc", strings.Replace(price, ".", ",", 1))
}

// plural picks the Czech form for n: one for 1, few for 2-4, many otherwise.
func plural(n int, one, few, many string) string {
	switch {
	case n == 1:
		return one
	case n >= 2 && n <= 4:
		return few
	default:
		return many
	}
}
