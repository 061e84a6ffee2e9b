package utils

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	phoneKeepRe   = regexp.MustCompile(`[^0-9+()\- ]`)
)

// SanitizeText strips script blocks and HTML tags from user-supplied text and
// collapses runs of whitespace. Every free-text field goes through here before
// validation and before being written into a pending order or an order
// document; the same data is echoed back to clients later.
func SanitizeText(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizePhone keeps only digits and the characters +()- and space.
func SanitizePhone(s string) string {
	return strings.TrimSpace(phoneKeepRe.ReplaceAllString(s, ""))
}

// DigitsOnly strips everything but digits. Used for OTP format checks.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
