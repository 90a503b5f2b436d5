package parser

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoBackend 使用 Eino PDF Parser 按页提取文本
type EinoBackend struct {
	parser *pdf.PDFParser
}

// NewEinoBackend 初始化 Eino 后端。
// 配置为按页面分割，每页得到一个 schema.Document
func NewEinoBackend(ctx context.Context) (*EinoBackend, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}
	return &EinoBackend{parser: p}, nil
}

// Name 实现 PDFBackend
func (b *EinoBackend) Name() string { return "eino" }

// ExtractPages 实现 PDFBackend
func (b *EinoBackend) ExtractPages(ctx context.Context, data []byte, uri string) ([]string, error) {
	reader, _ := readerFor(data)
	docs, err := b.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	if err != nil {
		return nil, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}

	pages := make([]string, len(docs))
	for i, doc := range docs {
		if doc != nil {
			pages[i] = doc.Content
		}
	}
	return pages, nil
}
