package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"python", "python", 100},
		{"python", "phyton", 83},
		{"mysql", "mysq1", 80},
		{"abcdefgh", "abcdefgx", 88},
		{"abcdefgh", "abcdexyz", 62}, // 62.5 取偶
		{"", "python", 0},
		{"python", "", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ratio(tt.a, tt.b), "Ratio(%q, %q)", tt.a, tt.b)
	}
}

func TestSkillMatcherFingerprint(t *testing.T) {
	assert.Equal(t, "threshold=80,case_sensitive=false", NewSkillMatcher().Fingerprint())
	assert.Equal(t, "threshold=90,case_sensitive=true",
		NewSkillMatcher(WithFuzzyThreshold(90), WithCaseSensitiveExact(true)).Fingerprint())
}

func TestSkillMatcherExact(t *testing.T) {
	catalog := NewSkillCatalog([]string{"python", "java", "machine learning", "sql", "go"})
	matcher := NewSkillMatcher()

	got := matcher.Match("Experienced in Python and Machine Learning, SQL.", catalog)
	assert.Equal(t, []string{"machine learning", "python", "sql"}, got)
}

func TestSkillMatcherWholeToken(t *testing.T) {
	catalog := NewSkillCatalog([]string{"c++", "go"})
	matcher := NewSkillMatcher()

	assert.Empty(t, matcher.Match("going to the google office", catalog), "不应匹配词的一部分")
	assert.Equal(t, []string{"go"}, matcher.Match("backend in Go, 5 years", catalog))
}

func TestSkillMatcherFuzzy(t *testing.T) {
	catalog := NewSkillCatalog([]string{"python", "mysql"})

	matcher := NewSkillMatcher()
	assert.Equal(t, []string{"python"}, matcher.Match("strong phyton skills", catalog), "相似度83应命中")
	assert.Empty(t, matcher.Match("mysq1 admin", catalog), "相似度恰好为80不应命中")

	lenient := NewSkillMatcher(WithFuzzyThreshold(79))
	assert.Equal(t, []string{"mysql"}, lenient.Match("mysq1 admin", catalog))
}

func TestSkillMatcherCaseSensitiveExact(t *testing.T) {
	catalog := NewSkillCatalog([]string{"python", "docker"})
	matcher := NewSkillMatcher(WithCaseSensitiveExact(true))

	assert.Equal(t, []string{"docker"}, matcher.Match("DOCKER docker PYTHON", catalog), "全大写的PYTHON精确与模糊都不命中")
	assert.Equal(t, []string{"python"}, matcher.Match("Python", catalog), "首字母大写只能依靠模糊匹配(83分)命中")
}

func TestSkillMatcherEmpty(t *testing.T) {
	matcher := NewSkillMatcher()
	assert.Nil(t, matcher.Match("python", NewSkillCatalog(nil)))
	assert.Nil(t, matcher.Match("", NewSkillCatalog([]string{"python"})))
	assert.Nil(t, matcher.Match("python", nil))
}

func TestUniqueTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueTokens(" a b\ta\nc b "))
}
