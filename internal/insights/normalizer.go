// Package insights implements the transaction pattern analytics engine:
// recurring-payment detection, spending anomaly detection, savings
// opportunity scoring, merchant clustering and seasonal pattern analysis.
// Every analysis is a pure function over a caller-supplied snapshot of
// transactions; nothing here performs I/O or holds state between calls.
package insights

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Patterns for cleaning raw bank descriptions into merchant names.
	channelPrefixPattern = regexp.MustCompile(`(?i)^((debit|credit)(\s+card)?(\s+purchase)?|pos(\s+purchase)?|atm(\s+withdrawal)?|eftpos|visa|mastercard|amex|paypal\s*\*?)\s+`)
	trailingDatePattern  = regexp.MustCompile(`\s+\d{1,2}[/-]\d{1,2}([/-]\d{2,4})?$`)
	trailingRefPattern   = regexp.MustCompile(`(\s+#?\d{3,})+$`)

	nonAlphanumPattern = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// entitySuffixes are business-entity words dropped from the comparison form.
var entitySuffixes = map[string]bool{
	"inc":      true,
	"llc":      true,
	"corp":     true,
	"ltd":      true,
	"co":       true,
	"store":    true,
	"shop":     true,
	"market":   true,
	"pharmacy": true,
	"gas":      true,
	"station":  true,
}

// ExtractMerchantName strips transactional noise from a raw description and
// returns a title-cased display name. It is total: any input, including the
// empty string, yields a string.
func ExtractMerchantName(description string) string {
	cleaned := strings.TrimSpace(description)
	cleaned = channelPrefixPattern.ReplaceAllString(cleaned, "")
	cleaned = trailingDatePattern.ReplaceAllString(cleaned, "")
	cleaned = trailingRefPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	// Casers are stateful, so one is created per call.
	caser := cases.Title(language.English)
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = caser.String(strings.ToLower(word))
	}
	return strings.Join(words, " ")
}

// NormalizeForComparison folds a merchant name into its canonical comparison
// form: lowercase, punctuation stripped, business-entity suffix words removed
// and whitespace collapsed.
func NormalizeForComparison(name string) string {
	folded := strings.ToLower(name)
	folded = nonAlphanumPattern.ReplaceAllString(folded, "")

	words := strings.Fields(folded)
	kept := words[:0]
	for _, word := range words {
		if entitySuffixes[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
