package scanner

import (
    "regexp"
    "strings"
)

// Rule is one lexical red flag checked against the full URL string.
type Rule struct {
    Pattern *regexp.Regexp
    Reason  string
    Risk    int
}

var brands = []string{"paypal", "amazon", "google", "microsoft", "apple"}

var brandAlt = "(?:" + strings.Join(brands, "|") + ")"

// Rules is evaluated in order; detectedPatterns follows this order.
// Bump ScanVersion whenever an entry or weight changes.
var Rules = []Rule{
    {regexp.MustCompile(`(?i)[а-я]`), "Cyrillic characters (possible homograph attack)", 40},
    {regexp.MustCompile(`(?i)[αβγδεζηθικλμνξοπρστυφχψω]`), "Greek characters (possible homograph attack)", 40},
    {regexp.MustCompile(`xn--`), "Punycode detected", 30},
    {regexp.MustCompile(`[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`), "IP address instead of domain", 35},
    {regexp.MustCompile(`-{2,}`), "Multiple consecutive hyphens", 20},
    // TLD of the authority: followed by an optional port, then a path,
    // query, fragment or the end of the string.
    {regexp.MustCompile(`(?i)^[a-z][a-z0-9+.\-]*://[^/?#]*\.(?:tk|ml|ga|cf)(?::[0-9]*)?(?:[/?#]|$)`), "Free domain extension", 25},
    {regexp.MustCompile(`(?i)` + brandAlt + `\.(?:tk|ml|ga|cf|info|biz)\b`), "Brand impersonation with suspicious TLD", 70},
    {regexp.MustCompile(`(?i)[0-9]+` + brandAlt + `|` + brandAlt + `[0-9]+`), "Brand name with numbers (suspicious)", 50},
}
