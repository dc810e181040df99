package integration

import (
	"strings"
	"unicode/utf8"
)

// MaxSyncMessageLength bounds the message stored on a sync log
const MaxSyncMessageLength = 1000

// TruncateText cuts s to at most n bytes without splitting a rune.
// Invalid UTF-8 in s is replaced first, so the result is always valid.
func TruncateText(s string, n int) string {
	s = strings.ToValidUTF8(s, "�")
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
