package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"

	"github.com/rs/zerolog"
)

// ResumeParser 把简历纯文本转换为结构化记录。
// 所有依赖构造后只读，可在多个 goroutine 间共享。
type ResumeParser struct {
	patterns   *parser.PatternLibrary
	catalog    *parser.SkillCatalog
	matcher    *parser.SkillMatcher
	recognizer OrganizationRecognizer
	logger     zerolog.Logger

	fingerprint string
}

// ParseOutcome 解析结果以及降级信息
type ParseOutcome struct {
	Record types.ResumeRecord
	// RecognizerErr 院校识别失败时非空，此时 Record 中没有院校
	RecognizerErr error
}

// Cacheable 提取失败或识别降级的结果不应缓存
func (o ParseOutcome) Cacheable() bool {
	return o.Record.PageCount > 0 && o.RecognizerErr == nil
}

// ParserOpt ResumeParser 配置选项
type ParserOpt func(*ResumeParser)

// WithPatterns 替换字段规则
func WithPatterns(lib *parser.PatternLibrary) ParserOpt {
	return func(p *ResumeParser) {
		if lib != nil {
			p.patterns = lib
		}
	}
}

// WithMatcher 替换技能匹配器
func WithMatcher(m *parser.SkillMatcher) ParserOpt {
	return func(p *ResumeParser) {
		if m != nil {
			p.matcher = m
		}
	}
}

// WithRecognizer 替换院校识别器
func WithRecognizer(r OrganizationRecognizer) ParserOpt {
	return func(p *ResumeParser) {
		if r != nil {
			p.recognizer = r
		}
	}
}

// WithParserLogger 设置日志记录器
func WithParserLogger(l zerolog.Logger) ParserOpt {
	return func(p *ResumeParser) {
		p.logger = l
	}
}

// NewResumeParser 创建解析器，未指定的组件使用默认实现
func NewResumeParser(catalog *parser.SkillCatalog, opts ...ParserOpt) *ResumeParser {
	p := &ResumeParser{
		patterns:   parser.NewPatternLibrary(),
		catalog:    catalog,
		matcher:    parser.NewSkillMatcher(),
		recognizer: parser.NewEntityRecognizer(nil),
		logger:     logger.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.fingerprint = p.computeFingerprint()
	return p
}

// Fingerprint 目录、匹配、字段规则和识别后端的设置摘要。
// 任一项变化都会改变解析结果，缓存键需要包含它。
func (p *ResumeParser) Fingerprint() string {
	return p.fingerprint
}

func (p *ResumeParser) computeFingerprint() string {
	recognizer := "custom"
	if named, ok := p.recognizer.(interface{ Name() string }); ok {
		recognizer = named.Name()
	}
	h := md5.New()
	fmt.Fprintf(h, "catalog=%s;matcher=%s;patterns=%s;recognizer=%s",
		p.catalog.Fingerprint(), p.matcher.Fingerprint(), p.patterns.Fingerprint(), recognizer)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Catalog 返回技能目录
func (p *ResumeParser) Catalog() *parser.SkillCatalog {
	return p.catalog
}

// Parse 依次提取姓名、联系方式、院校、学位和技能。
// 缺失字段保持为空，占位符只在 View() 中填充。
func (p *ResumeParser) Parse(ctx context.Context, text string, pageCount int) types.ResumeRecord {
	return p.Analyze(ctx, text, pageCount).Record
}

// Analyze 同 Parse，另外返回院校识别是否降级
func (p *ResumeParser) Analyze(ctx context.Context, text string, pageCount int) ParseOutcome {
	out := ParseOutcome{}
	rec := &out.Record
	rec.PageCount = pageCount

	if line, ok := parser.FirstNonBlankLine(text); ok {
		rec.Name = types.Some(parser.TitleCase(line))
	}

	rec.Emails = p.patterns.Emails(text)
	rec.Phones = p.patterns.Phones(text)
	if url, ok := p.patterns.GitHub(text); ok {
		rec.GitHub = types.Some(url)
	}

	universities, err := p.recognizer.RecognizeOrganizations(ctx, text)
	if err != nil {
		// 识别失败只影响院校字段
		p.logger.Warn().Err(err).Msg("院校识别失败")
		out.RecognizerErr = err
	} else {
		rec.Universities = universities
	}

	rec.Degrees = p.patterns.Degrees(text)
	rec.Skills = p.matcher.Match(text, p.catalog)
	return out
}
