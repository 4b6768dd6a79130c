// Package identity maps arbitrarily formatted phone numbers onto stable user keys.
package identity

import (
	"strings" // Prefix and suffix handling
	"unicode" // Digit classification
)

// Suffix sizes tried by fuzzy matching, longest first
var suffixSizes = []int{11, 10, 9, 8} // Shortest is the minimum fuzzy input

// Phones shorter or longer than this are rejected on registration
const (
	minDigits = 8  // Shortest local number
	maxDigits = 15 // E.164 maximum
)

// transportSuffixes are appended by some chat transports after the number
var transportSuffixes = []string{"@c.us", "@s.whatsapp.net", "@g.us"}

// Normalizer strips transport noise from raw phone strings
type Normalizer struct {
	Prefixes    []string // Transport prefixes such as "whatsapp:", matched case-insensitively
	CountryCode string   // Two-digit code assumed for numbers written without one
}

// Strip removes known prefixes, transport suffixes and surrounding space
func (n Normalizer) Strip(raw string) string {
	s := strings.TrimSpace(raw) // Working copy
	lower := strings.ToLower(s) // For case-insensitive matching
	for _, p := range n.Prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			s = s[len(p):]
			lower = lower[len(p):]
		}
	}
	for _, suf := range transportSuffixes {
		if strings.HasSuffix(lower, suf) {
			s = s[:len(s)-len(suf)]
			lower = lower[:len(lower)-len(suf)]
		}
	}
	return strings.TrimSpace(s)
}

// Digits returns only the decimal digits of the stripped phone
func (n Normalizer) Digits(raw string) string {
	return digitsOnly(n.Strip(raw))
}

// Canonical is the form a phone is stored in on registration: digits with country code
func (n Normalizer) Canonical(raw string) string {
	d := n.Digits(raw)
	if n.CountryCode != "" && len(d) <= 11 {
		return n.CountryCode + d
	}
	return d
}

// Candidates lists the textual forms under which the phone may have been stored,
// most literal first
func (n Normalizer) Candidates(raw string) []string {
	seen := make(map[string]bool) // Forms already listed
	var out []string              // Result, most literal first
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(strings.TrimSpace(raw))
	stripped := n.Strip(raw)
	add(stripped)
	d := digitsOnly(stripped) // Bare digits
	// Nothing numeric to expand
	if d == "" {
		return out
	}
	add(d)
	add("+" + d)
	if len(d) >= 12 {
		// Drop a leading two-digit country code
		add(d[2:])
		add("+" + d[2:])
	}
	// Local number, add the assumed country code
	if n.CountryCode != "" && len(d) <= 11 {
		add(n.CountryCode + d)
		add("+" + n.CountryCode + d)
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// commonSuffix returns the longest size in suffixSizes on which a and b agree, or 0
func commonSuffix(a, b string) int {
	for _, size := range suffixSizes {
		if len(a) >= size && len(b) >= size && a[len(a)-size:] == b[len(b)-size:] {
			return size
		}
	}
	return 0
}
