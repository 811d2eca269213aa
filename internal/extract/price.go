package extract

import (
	"regexp"
	"strings"
)

// Currency tokens the line parser recognizes: symbol-prefixed ($12.99,
// ¥1200), symbol-suffixed (12€) and CJK currency-word suffixed (38元, 500円).
var (
	priceToken = regexp.MustCompile(`(?:[$¥￥€£]\s*\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s*(?:[$¥￥€£]|元|円))`)

	// trailingPrice matches a price token at the end of a "name price" line.
	trailingPrice = regexp.MustCompile(`(?:[$¥￥€£]\s*\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s*(?:[$¥￥€£]|元|円))\s*$`)

	// onlyPrice matches a line fragment that is nothing but a price.
	onlyPrice = regexp.MustCompile(`^\s*(?:[$¥￥€£]\s*\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s*(?:[$¥￥€£]|元|円))\s*$`)
)

// StripPrice removes price tokens from a dish name, yielding the clean
// text used for image-search queries.
func StripPrice(name string) string {
	cleaned := priceToken.ReplaceAllString(name, "")
	cleaned = strings.Trim(cleaned, " \t-–—:：·.")
	return strings.TrimSpace(cleaned)
}
