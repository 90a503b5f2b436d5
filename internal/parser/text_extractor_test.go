package parser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	pages []string
	err   error
	panic bool
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) ExtractPages(_ context.Context, _ []byte, _ string) ([]string, error) {
	if f.panic {
		panic("corrupt xref")
	}
	return f.pages, f.err
}

func newTestExtractor(b PDFBackend) *TextExtractor {
	return NewTextExtractor(b, WithExtractorLogger(zerolog.Nop()))
}

func TestTextExtractorConcatenatesPages(t *testing.T) {
	e := newTestExtractor(&fakeBackend{pages: []string{"Jane Doe\n", "", " \n\t", "Skills: go"}})

	res := e.ExtractBytes(context.Background(), []byte("%PDF"), "cv.pdf")
	assert.Equal(t, "Jane Doe\nSkills: go", res.Text, "非空页直接拼接，不插入分隔符，空白页跳过")
	assert.Equal(t, 4, res.PageCount, "页数包含空白页")
}

func TestTextExtractorAbsorbsFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend PDFBackend
		data    []byte
	}{
		{name: "后端错误", backend: &fakeBackend{err: errors.New("malformed")}, data: []byte("x")},
		{name: "后端panic", backend: &fakeBackend{panic: true}, data: []byte("x")},
		{name: "空内容", backend: &fakeBackend{pages: []string{"a"}}, data: nil},
		{name: "损坏的PDF", backend: NewLedongthucBackend(), data: []byte("definitely not a pdf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestExtractor(tt.backend).ExtractBytes(context.Background(), tt.data, "bad.pdf")
			assert.Equal(t, ExtractResult{}, res)
		})
	}
}

func TestTextExtractorReadError(t *testing.T) {
	e := newTestExtractor(&fakeBackend{pages: []string{"a"}})
	res := e.Extract(context.Background(), iotest.ErrReader(errors.New("disk gone")), "cv.pdf")
	assert.Equal(t, ExtractResult{}, res)
}

func TestTextExtractorDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	e := newTestExtractor(&fakeBackend{pages: []string{"late"}})
	assert.Equal(t, ExtractResult{}, e.ExtractBytes(ctx, []byte("x"), "cv.pdf"))
}

func TestLedongthucBackend(t *testing.T) {
	data := buildTestPDF([]string{"Jane Doe", "", "Python Developer"})

	pages, err := NewLedongthucBackend().ExtractPages(context.Background(), data, "cv.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "Jane Doe")
	// 空白页也会带一个换行
	assert.Empty(t, strings.TrimSpace(pages[1]))
	assert.Contains(t, pages[2], "Python Developer")

	res := NewTextExtractor(nil, WithExtractorLogger(zerolog.Nop())).Extract(context.Background(), bytes.NewReader(data), "cv.pdf")
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, pages[0]+pages[2], res.Text, "空白页不参与拼接")
}

func TestNewPDFBackend(t *testing.T) {
	ctx := context.Background()

	b, err := NewPDFBackend(ctx, "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "ledongthuc", b.Name())

	b, err = NewPDFBackend(ctx, "TIKA", "http://localhost:9998/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "tika", b.Name())
	assert.Equal(t, "http://localhost:9998", b.(*TikaBackend).ServerURL)

	_, err = NewPDFBackend(ctx, "tika", "", 0)
	assert.Error(t, err)

	_, err = NewPDFBackend(ctx, "word", "", 0)
	assert.Error(t, err)
}
