package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-ranker/internal/logger"

	"github.com/rs/zerolog"
)

// PDFBackend 按页提取PDF文本的后端实现
type PDFBackend interface {
	// Name 后端名称，用于日志
	Name() string
	// ExtractPages 返回每一页的文本，没有文本的页返回空串。
	// 返回切片的长度即文档页数。
	ExtractPages(ctx context.Context, data []byte, uri string) ([]string, error)
}

// ExtractResult 文本提取结果。PageCount 为0表示提取失败
type ExtractResult struct {
	Text      string
	PageCount int
}

// TextExtractor 把上传的PDF转换为纯文本。
// 任何失败都不会向调用方返回错误，而是得到空文本和0页，并记录告警日志。
type TextExtractor struct {
	backend PDFBackend
	logger  zerolog.Logger
}

// ExtractorOption TextExtractor 配置选项
type ExtractorOption func(*TextExtractor)

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(l zerolog.Logger) ExtractorOption {
	return func(e *TextExtractor) {
		e.logger = l
	}
}

// NewTextExtractor 创建文本提取器，backend 为 nil 时使用 LedongthucBackend
func NewTextExtractor(backend PDFBackend, options ...ExtractorOption) *TextExtractor {
	if backend == nil {
		backend = NewLedongthucBackend()
	}
	e := &TextExtractor{backend: backend, logger: logger.Logger}
	for _, option := range options {
		option(e)
	}
	return e
}

// Extract 读取全部内容后提取文本
func (e *TextExtractor) Extract(ctx context.Context, r io.Reader, uri string) ExtractResult {
	data, err := io.ReadAll(r)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Msg("读取PDF内容失败")
		return ExtractResult{}
	}
	return e.ExtractBytes(ctx, data, uri)
}

// ExtractBytes 从字节数组提取文本。
// 各页中非空白的文本按页序直接拼接，不插入分隔符。
func (e *TextExtractor) ExtractBytes(ctx context.Context, data []byte, uri string) (result ExtractResult) {
	startTime := time.Now()
	log := e.logger.With().Str("uri", uri).Str("backend", e.backend.Name()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("PDF解析发生panic，按提取失败处理")
			result = ExtractResult{}
		}
	}()

	if len(data) == 0 {
		log.Warn().Msg("PDF内容为空")
		return ExtractResult{}
	}

	pages, err := e.backend.ExtractPages(ctx, data, uri)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(startTime)).Msg("PDF文本提取失败")
		return ExtractResult{}
	}

	// 只有空白字符的页按无文本处理
	var sb strings.Builder
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			sb.WriteString(page)
		}
	}

	log.Debug().
		Int("pages", len(pages)).
		Int("chars", sb.Len()).
		Dur("elapsed", time.Since(startTime)).
		Msg("PDF文本提取完成")
	return ExtractResult{Text: sb.String(), PageCount: len(pages)}
}

func readerFor(data []byte) (*bytes.Reader, int64) {
	return bytes.NewReader(data), int64(len(data))
}

// NewPDFBackend 按名称创建后端: ledongthuc (默认)、eino、tika
func NewPDFBackend(ctx context.Context, name, tikaURL string, tikaTimeout time.Duration, tikaOpts ...TikaOption) (PDFBackend, error) {
	switch strings.ToLower(name) {
	case "", "ledongthuc":
		return NewLedongthucBackend(), nil
	case "eino":
		return NewEinoBackend(ctx)
	case "tika":
		if tikaURL == "" {
			return nil, fmt.Errorf("tika backend requires a server url")
		}
		return NewTikaBackend(tikaURL, append([]TikaOption{WithTikaTimeout(tikaTimeout)}, tikaOpts...)...), nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", name)
	}
}
