package inventory

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalizeText recorta y normaliza a NFC (un acento compuesto cuenta como una sola runa).
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
