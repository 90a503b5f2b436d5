package parser

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// DefaultFuzzyThreshold 模糊匹配阈值，相似度必须严格大于该值
const DefaultFuzzyThreshold = 80

// SkillMatcher 判断目录中的哪些技能出现在文本中。
// 先做整词精确匹配，未命中再逐词做模糊匹配。
type SkillMatcher struct {
	threshold          int
	caseSensitiveExact bool
}

// MatcherOption SkillMatcher 的配置选项
type MatcherOption func(*SkillMatcher)

// WithFuzzyThreshold 设置模糊匹配阈值 (0-100)
func WithFuzzyThreshold(threshold int) MatcherOption {
	return func(m *SkillMatcher) {
		m.threshold = threshold
	}
}

// WithCaseSensitiveExact 精确匹配阶段区分大小写。
// 目录中的技能均为小写，开启后首字母大写的 "Python" 只能依靠模糊匹配命中。
func WithCaseSensitiveExact(sensitive bool) MatcherOption {
	return func(m *SkillMatcher) {
		m.caseSensitiveExact = sensitive
	}
}

// NewSkillMatcher 创建技能匹配器
func NewSkillMatcher(options ...MatcherOption) *SkillMatcher {
	m := &SkillMatcher{threshold: DefaultFuzzyThreshold}
	for _, option := range options {
		option(m)
	}
	return m
}

// Match 返回文本中出现的目录技能 (小写、去重、按字典序)。
// 最坏复杂度为 O(目录大小 × 词数)。
func (m *SkillMatcher) Match(text string, catalog *SkillCatalog) []string {
	if catalog.Len() == 0 || text == "" {
		return nil
	}

	tokens := uniqueTokens(text)
	var found []string
	for i, skill := range catalog.terms {
		if catalog.exactPattern(i, m.caseSensitiveExact).MatchString(text) {
			found = append(found, skill)
			continue
		}
		if m.fuzzyHit(skill, tokens) {
			found = append(found, skill)
		}
	}
	return found
}

// Fingerprint 影响匹配结果的设置
func (m *SkillMatcher) Fingerprint() string {
	return fmt.Sprintf("threshold=%d,case_sensitive=%t", m.threshold, m.caseSensitiveExact)
}

func (m *SkillMatcher) fuzzyHit(skill string, tokens []string) bool {
	for _, token := range tokens {
		if Ratio(skill, token) > m.threshold {
			return true
		}
	}
	return false
}

// uniqueTokens 按空白切词，重复的词只保留第一次出现
func uniqueTokens(text string) []string {
	fields := strings.Fields(text)
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// Ratio 基于编辑距离的相似度 (0-100)。
// 距离只计插入和删除，即 (len(a)+len(b)-dist)/(len(a)+len(b))，按字符(rune)计算，
// 结果四舍六入五成双。任一字符串为空时返回0。
func Ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	total := la + lb
	dist := edlib.LCSEditDistance(a, b)
	return int(math.RoundToEven(100 * float64(total-dist) / float64(total)))
}
