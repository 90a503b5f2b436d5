package parser

import (
	"context"
	"strings"
	"unicode"

	"resume-ranker/internal/types"
)

// institutionKeywords 判定组织实体是否为院校的关键词
var institutionKeywords = []string{"university", "college", "institute", "academy"}

// Recognizer 命名实体识别后端
type Recognizer interface {
	// Recognize 返回文本中的实体，按出现顺序
	Recognize(ctx context.Context, text string) ([]types.Entity, error)
}

// EntityRecognizer 在通用实体识别之上筛选出院校名称
type EntityRecognizer struct {
	backend Recognizer
}

// NewEntityRecognizer 创建院校识别器，backend 为 nil 时使用 RuleRecognizer
func NewEntityRecognizer(backend Recognizer) *EntityRecognizer {
	if backend == nil {
		backend = NewRuleRecognizer()
	}
	return &EntityRecognizer{backend: backend}
}

// Name 后端名称，后端未命名时为 custom
func (r *EntityRecognizer) Name() string {
	if named, ok := r.backend.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "custom"
}

// RecognizeOrganizations 返回文本中提到的院校，首字母大写，保持文档顺序，不去重
func (r *EntityRecognizer) RecognizeOrganizations(ctx context.Context, text string) ([]string, error) {
	entities, err := r.backend.Recognize(ctx, strings.ToLower(text))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, ent := range entities {
		if !strings.EqualFold(ent.Label, types.EntityLabelOrganization) {
			continue
		}
		if !containsInstitutionKeyword(ent.Text) {
			continue
		}
		out = append(out, TitleCase(ent.Text))
	}
	return out, nil
}

func containsInstitutionKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range institutionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RuleRecognizer 基于规则的离线组织识别。
// 逐行查找院校关键词，并向两侧吸收相邻的非停用词构成机构名。
type RuleRecognizer struct {
	maxLeft  int
	maxRight int
}

// NewRuleRecognizer 创建规则识别器
func NewRuleRecognizer() *RuleRecognizer {
	return &RuleRecognizer{maxLeft: 4, maxRight: 3}
}

// Name 后端名称
func (r *RuleRecognizer) Name() string { return "rule" }

var ruleStopWords = map[string]struct{}{
	"from": {}, "at": {}, "in": {}, "and": {}, "the": {}, "with": {}, "to": {}, "for": {},
	"of": {}, "by": {}, "on": {}, "a": {}, "an": {}, "as": {},
	"graduated": {}, "studied": {}, "attended": {}, "student": {}, "alumni": {},
	"degree": {}, "bachelor": {}, "bachelors": {}, "bachelor's": {},
	"master": {}, "masters": {}, "master's": {}, "phd": {}, "diploma": {},
	"certificate": {}, "major": {}, "minor": {},
}

// 右侧连接词，如 "university of ..."、"institute for ..."
var ruleConnectors = map[string]struct{}{"of": {}, "for": {}, "at": {}}

const segmentDelimiters = ",;:|()[]/•·–—"

// Recognize 实现 Recognizer
func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	var entities []types.Entity
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segments := strings.FieldsFunc(line, func(c rune) bool {
			return strings.ContainsRune(segmentDelimiters, c)
		})
		for _, seg := range segments {
			entities = append(entities, r.recognizeSegment(seg)...)
		}
	}
	return entities, nil
}

func (r *RuleRecognizer) recognizeSegment(seg string) []types.Entity {
	raw := strings.Fields(seg)
	words := make([]string, len(raw))
	for i, tok := range raw {
		words[i] = cleanToken(tok)
	}

	var out []types.Entity
	for i := 0; i < len(words); i++ {
		if !isInstitutionKeyword(words[i]) {
			continue
		}

		start := i
		for j := i - 1; j >= 0 && i-j <= r.maxLeft; j-- {
			if !isNameWord(words[j]) {
				break
			}
			start = j
		}

		end := i
		if k := i + 1; k < len(words) {
			if _, ok := ruleConnectors[strings.ToLower(words[k])]; ok {
				k++
				if k < len(words) && strings.EqualFold(words[k], "the") {
					k++
				}
				last := -1
				for n := 0; k < len(words) && n < r.maxRight; k, n = k+1, n+1 {
					if !isNameWord(words[k]) {
						break
					}
					last = k
				}
				if last >= 0 {
					end = last
				}
			}
		}

		parts := make([]string, 0, end-start+1)
		for _, w := range words[start : end+1] {
			if w != "" {
				parts = append(parts, w)
			}
		}
		out = append(out, types.Entity{
			Text:  strings.Join(parts, " "),
			Label: types.EntityLabelOrganization,
		})
		i = end
	}
	return out
}

func cleanToken(tok string) string {
	return strings.TrimFunc(tok, func(c rune) bool {
		return c != '\'' && c != '&' && (unicode.IsPunct(c) || unicode.IsSymbol(c))
	})
}

func isInstitutionKeyword(word string) bool {
	w := strings.TrimSuffix(strings.ToLower(word), "'s")
	for _, kw := range institutionKeywords {
		if w == kw {
			return true
		}
	}
	return false
}

func isNameWord(word string) bool {
	if word == "" {
		return false
	}
	if _, stop := ruleStopWords[strings.ToLower(word)]; stop {
		return false
	}
	return !strings.ContainsFunc(word, unicode.IsDigit)
}
