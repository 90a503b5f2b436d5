package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// Components 聚合服务依赖的功能组件，便于集中管理和测试替换
type Components struct {
	Extractor TextExtractor  // PDF文本提取
	Parser    *ResumeParser  // 纯文本到结构化记录
	Cache     ParseCache     // 可选，按内容MD5缓存解析结果
	Publisher EventPublisher // 可选，发布排名完成事件
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	MaxDocuments     int           // 单批最多简历数，0 表示不限制
	MaxDocumentBytes int64         // 单份简历最大字节数，0 表示不限制
	DocumentTimeout  time.Duration // 单份简历处理超时，0 表示不限制
	Logger           zerolog.Logger
}

// ----- 组件选项 -----

// WithcompExtractor 设置文本提取器组件
func WithcompExtractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = extractor
	}
}

// WithcompParser 设置简历解析器组件
func WithcompParser(p *ResumeParser) ComponentOpt {
	return func(c *Components) {
		c.Parser = p
	}
}

// WithcompCache 设置解析缓存组件
func WithcompCache(cache ParseCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithcompPublisher 设置事件发布组件
func WithcompPublisher(publisher EventPublisher) ComponentOpt {
	return func(c *Components) {
		c.Publisher = publisher
	}
}

// ----- 设置选项 -----

// WithsetMaxdocuments 设置单批最多简历数
func WithsetMaxdocuments(n int) SettingOpt {
	return func(s *Settings) {
		s.MaxDocuments = n
	}
}

// WithsetMaxdocumentbytes 设置单份简历最大字节数
func WithsetMaxdocumentbytes(n int64) SettingOpt {
	return func(s *Settings) {
		s.MaxDocumentBytes = n
	}
}

// WithsetDocumenttimeout 设置单份简历处理超时
func WithsetDocumenttimeout(d time.Duration) SettingOpt {
	return func(s *Settings) {
		s.DocumentTimeout = d
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// NewComponents 用组件选项构造 Components
func NewComponents(opts ...ComponentOpt) *Components {
	c := &Components{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
