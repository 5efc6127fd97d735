package util

// TruncateRightWithSuffix keeps the first n runes of text and only appends the suffix if truncation happens.
func TruncateRightWithSuffix(text string, n int, suffix string) string {
	rs := []rune(text)
	if n >= len(rs) {
		return text
	}

	return string(rs[:max(n, 0)]) + suffix
}
