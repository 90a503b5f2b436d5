package parser

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// LedongthucBackend 纯Go实现的逐页文本提取
type LedongthucBackend struct{}

// NewLedongthucBackend 创建默认后端
func NewLedongthucBackend() *LedongthucBackend {
	return &LedongthucBackend{}
}

// Name 实现 PDFBackend
func (b *LedongthucBackend) Name() string { return "ledongthuc" }

// ExtractPages 实现 PDFBackend
func (b *LedongthucBackend) ExtractPages(ctx context.Context, data []byte, uri string) ([]string, error) {
	reader, size := readerFor(data)
	doc, err := pdf.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", uri, err)
	}

	total := doc.NumPage()
	pages := make([]string, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", i, uri, err)
		}
		pages[i-1] = text
	}
	return pages, nil
}
