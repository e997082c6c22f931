package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// maxTitleRunes bounds archive and directory names derived from titles.
const maxTitleRunes = 50

// fallbackTitle names output for content with no usable title.
const fallbackTitle = "manga"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeTitle turns a content title into a safe archive name. The title is
// NFC-normalized and width-folded, so full-width Latin becomes ASCII and
// half-width katakana becomes full-width. Only word characters, whitespace,
// hyphens and the CJK/kana blocks survive. The result is at most 50 runes and
// falls back to "manga".
func SanitizeTitle(title string) string {
	folded := width.Fold.String(norm.NFC.String(title))
	var b strings.Builder
	for _, r := range folded {
		if keepTitleRune(r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > maxTitleRunes {
		out = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	out = SanitizeFileName(out)
	if out == "" {
		return fallbackTitle
	}
	return out
}

func keepTitleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == ' ':
		return true
	case r >= 0x3000 && r <= 0x303f, // CJK punctuation
		r >= 0x3040 && r <= 0x309f, // hiragana
		r >= 0x30a0 && r <= 0x30ff, // katakana
		r >= 0xff00 && r <= 0xff9f, // full-width forms
		r >= 0x4e00 && r <= 0x9faf, // CJK unified ideographs
		r >= 0x3400 && r <= 0x4dbf: // extension A
		return true
	default:
		return false
	}
}
