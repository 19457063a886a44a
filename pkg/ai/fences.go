package ai

import "strings"

const fence = "```"

// StripCodeFences removes a markdown fence wrapping the whole text: an
// opening ``` line with an optional language tag and a closing ``` line.
// Text without a surrounding fence is only trimmed.
func StripCodeFences(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, fence) {
		return clean
	}

	if nl := strings.IndexByte(clean, '\n'); nl >= 0 {
		clean = clean[nl+1:]
	} else {
		// Single line such as ```code```.
		clean = strings.TrimPrefix(clean, fence)
	}

	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, fence)
	return strings.TrimSpace(clean)
}
