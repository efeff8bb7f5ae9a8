package money

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// keywords are the accepted spellings of the trigger word. Stored in NFC.
var keywords = map[string]struct{}{
	"branik":   {},
	"braník":   {},
	"bráník":   {},
	"branicek": {},
	"braníček": {},
	"bráníček": {},
}

// HasKeyword reports whether any whitespace-delimited token of folded text is
// exactly one of the trigger spellings. Tokens are NFC-normalized first so a
// decomposed "bráník" still matches.
func HasKeyword(folded string) bool {
	for _, token := range strings.Fields(folded) {
		if _, ok := keywords[norm.NFC.String(token)]; ok {
			return true
		}
	}
	return false
}
