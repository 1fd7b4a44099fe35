package sentiment

import (
	"regexp"
	"strings"
)

// MaxTextLength is the classifier input bound in characters
const MaxTextLength = 512

var (
	emphasisPattern   = regexp.MustCompile(`\*+`)
	mentionPattern    = regexp.MustCompile(`[ur]/\w+`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	disallowedPattern = regexp.MustCompile(`[^A-Za-z0-9\s.,!?-]`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// Sanitize normalizes raw forum text into a cleaned, length-bounded string.
// Markdown emphasis, user/section mentions and URLs are removed, anything
// outside letters, digits, whitespace and ". , ! ? -" becomes a space.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	text = emphasisPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = disallowedPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))

	// Only ASCII survives the filters above, so bytes are characters here
	if len(text) > MaxTextLength {
		text = strings.TrimSpace(text[:MaxTextLength])
	}

	return text
}
