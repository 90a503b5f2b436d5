package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase 每个单词首字母大写、其余小写。
// 单词是连续的有大小写的字符，撇号和数字等都算分隔："o'neil" -> "O'Neil"，"abc2def" -> "Abc2Def"。
func TitleCase(s string) string {
	// cases.Caser 有状态，不能跨 goroutine 共享，因此每次调用新建
	lower := cases.Lower(language.Und)
	var sb strings.Builder
	sb.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !isCased(r) {
			sb.WriteString(s[:size])
			s = s[size:]
			continue
		}
		end := size
		for end < len(s) {
			next, n := utf8.DecodeRuneInString(s[end:])
			if !isCased(next) {
				break
			}
			end += n
		}
		sb.WriteRune(unicode.ToTitle(r))
		sb.WriteString(lower.String(s[size:end]))
		s = s[end:]
	}
	return sb.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// Capitalize 首字母大写，其余全部小写
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// FirstNonBlankLine 返回第一个非空白行 (已去除首尾空白)
func FirstNonBlankLine(text string) (string, bool) {
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
