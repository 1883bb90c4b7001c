package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Sanity bounds for a plausible engagement total. Figures outside this range
// are treated as noise (phone numbers, line items, typos) and skipped.
const (
	minPlausiblePrice = 5_000
	maxPlausiblePrice = 5_000_000
)

// pricePatterns is the ordered cascade the extractor runs over generated
// proposal text. Specific bolded-label forms come first so that a generic
// "Total: $X" never shadows the real total; markdown-table rows are matched
// explicitly because cost proposals usually carry a pricing table.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*total project cost\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*total project investment\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*total cost\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*total investment\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*total price\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*grand total\*\*[:\s]*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)\|\s*\*{0,2}(?:grand )?total[^|]*?\*{0,2}\s*\|\s*\$?([\d,]+)`),
	regexp.MustCompile(`(?i)total project cost[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)total project investment[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)total cost[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)total investment[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)total proposed (?:cost|price)[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)project total[:\s]*\$([\d,]+)`),
	regexp.MustCompile(`(?i)\btotal[:\s]*\$([\d,]+)`),
}

// ExtractPrice recovers the dollar total the model actually wrote into
// free-text proposal output. Patterns are tried in order; the first match
// whose value falls inside the plausible range wins. Returns (0, false) when
// no pattern yields a figure in range. Pure function.
func ExtractPrice(content string) (float64, bool) {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if value >= minPlausiblePrice && value <= maxPlausiblePrice {
			return value, true
		}
	}
	return 0, false
}

// cleanJSON extracts a JSON object from text that may wrap it in markdown
// code fences or surrounding commentary.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
