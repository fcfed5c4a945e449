package classify

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Heuristic limits for the secondary spam checks. These are fixed;
// only the length and exclamation thresholds are per-chat.
const (
	capsRatioLimit  = 0.7
	capsMinLength   = 10
	maxEmoji        = 5
	repeatedRunLen  = 3
	maxNumberGroups = 5
)

var (
	linkRe        = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[\w-]+\.(?:com|net|org|io|ru)\b)`)
	numberGroupRe = regexp.MustCompile(`\d+`)
)

// excessiveCaps reports whether more than capsRatioLimit of the letters
// are uppercase. Messages shorter than capsMinLength characters pass.
func excessiveCaps(text string) bool {
	if utf8.RuneCountInString(text) < capsMinLength {
		return false
	}
	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > capsRatioLimit
}

// countEmoji counts runes in the common emoji blocks.
func countEmoji(text string) int {
	count := 0
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1FAFF, // pictographs, emoticons, symbols
			r >= 0x2600 && r <= 0x27BF, // misc symbols and dingbats
			r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
			count++
		}
	}
	return count
}

// containsLink reports whether text contains a URL or bare domain.
func containsLink(text string) bool {
	return linkRe.MatchString(text)
}

// hasRepeatedRun reports whether any letter or digit repeats
// repeatedRunLen or more times in a row.
func hasRepeatedRun(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			run++
			if run >= repeatedRunLen {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}

// countNumberGroups counts distinct digit groups in text.
func countNumberGroups(text string) int {
	return len(numberGroupRe.FindAllString(text, -1))
}
