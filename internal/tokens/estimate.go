// Package tokens provides a rough character-based token estimate for
// generative model usage accounting. Not billing-accurate; good enough
// for logging and history sizing.
package tokens

// Wide-script code points (CJK ideographs, kana, hangul-adjacent blocks,
// fullwidth forms) tokenize much denser than Latin text: roughly two
// tokens per character instead of one token per ~4 characters.
func isWide(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x9FFF:
		return true
	case r >= 0xF900 && r <= 0xFAFF:
		return true
	case r >= 0xFF00 && r <= 0xFFEF:
		return true
	}
	return false
}

// Estimate returns an estimated token count for text.
// Wide-script runes count 2 tokens each; everything else averages
// ~4 characters per token, rounded up. Empty input is 0.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	wide, narrow := 0, 0
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			narrow++
		}
	}
	return wide*2 + (narrow+3)/4
}
