package parser

import (
	"regexp"
)

// 结构化字段提取使用的正则表达式
const (
	// EmailPattern 邮箱：包含@且域名后缀至少两个字母
	EmailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`
	// LegacyEmailPattern 早期版本的邮箱规则，域名字符集为 [a-zAZ0-9.-]，
	// 只接受大写的 A 和 Z。仅在需要与旧结果逐字对齐时启用。
	LegacyEmailPattern = `[a-zA-Z0-9._%+-]+@[a-zAZ0-9.-]+\.[a-zA-Z]{2,}`
	// PhonePattern 电话：可选区号 + 3~4位 + 3~4位 + 4位，分隔符为空格或连字符。
	// 规则宽松，可能误匹配任意数字串，不做地区格式校验。
	PhonePattern = `(?:\(?\d{2,3}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}[\s-]?\d{4}`
	// GitHubPattern 代码托管主页地址
	GitHubPattern = `https?://(?:www\.)?github\.com/[A-Za-z0-9_-]+`
)

// DegreeKeywords 学位关键词，按声明顺序匹配，大小写不敏感。
// 最后一个 b.sc 未转义，点号匹配任意字符。
var DegreeKeywords = []string{
	`\bbachelor\b`, `\bmaster\b`, `\bphd\b`, `\bdoctorate\b`, `\bassociate\b`, `\bdiploma\b`, `\bengineer\b`,
	`\bb\.e\.\b`, `\bb\.tech\b`, `\bm\.tech\b`, `\bm\.sc\b`, `\bm\.eng\b`, `\bb\.sc\b`, `\bb\.eng\b`,
	`\bph\.d\b`, `\bmsc\b`, `\bbachelor's\b`, `\bmaster's\b`, `b.sc`,
}

// PatternLibrary 静态的结构化字段规则集合，构造后只读，可并发使用
type PatternLibrary struct {
	legacy  bool
	email   *regexp.Regexp
	phone   *regexp.Regexp
	github  *regexp.Regexp
	degrees []*regexp.Regexp
}

// PatternOption PatternLibrary 的配置选项
type PatternOption func(*patternSettings)

type patternSettings struct {
	legacyEmailDomain bool
}

// WithLegacyEmailDomain 使用旧的邮箱域名字符集
func WithLegacyEmailDomain(legacy bool) PatternOption {
	return func(s *patternSettings) {
		s.legacyEmailDomain = legacy
	}
}

// NewPatternLibrary 编译全部规则
func NewPatternLibrary(options ...PatternOption) *PatternLibrary {
	settings := &patternSettings{}
	for _, option := range options {
		option(settings)
	}

	emailPattern := EmailPattern
	if settings.legacyEmailDomain {
		emailPattern = LegacyEmailPattern
	}

	lib := &PatternLibrary{
		legacy:  settings.legacyEmailDomain,
		email:   regexp.MustCompile(emailPattern),
		phone:   regexp.MustCompile(PhonePattern),
		github:  regexp.MustCompile(GitHubPattern),
		degrees: make([]*regexp.Regexp, 0, len(DegreeKeywords)),
	}
	for _, keyword := range DegreeKeywords {
		lib.degrees = append(lib.degrees, regexp.MustCompile(`(?i)`+keyword))
	}
	return lib
}

// Fingerprint 影响字段提取结果的设置
func (l *PatternLibrary) Fingerprint() string {
	if l.legacy {
		return "email=legacy"
	}
	return "email=default"
}

// Emails 按出现顺序返回所有邮箱，保留重复
func (l *PatternLibrary) Emails(text string) []string {
	return l.email.FindAllString(text, -1)
}

// Phones 返回去重后的电话号码，顺序不具备语义
func (l *PatternLibrary) Phones(text string) []string {
	matches := l.phone.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	phones := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		phones = append(phones, m)
	}
	return phones
}

// GitHub 返回第一个主页地址
func (l *PatternLibrary) GitHub(text string) (string, bool) {
	m := l.github.FindString(text)
	return m, m != ""
}

// Degrees 每条规则取第一次命中，首字母大写后按规则顺序追加。
// 重叠规则 (bachelor 与 bachelor's) 可能产生重复项，不去重。
func (l *PatternLibrary) Degrees(text string) []string {
	var degrees []string
	for _, re := range l.degrees {
		if m := re.FindString(text); m != "" {
			degrees = append(degrees, Capitalize(m))
		}
	}
	return degrees
}
