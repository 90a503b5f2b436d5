package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// 全局 TracerProvider 只在这里设置一次
func TestParseDocumentSpanMasksCandidateName(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	svc := newTestService(t, &fakeExtractor{})
	svc.ParseDocument(context.Background(), Document{Name: "jane.pdf", Data: []byte(janeResume)})

	var attrs map[string]string
	for _, span := range rec.Ended() {
		if span.Name() == "ResumeService.ParseDocument" {
			attrs = make(map[string]string)
			for _, kv := range span.Attributes() {
				attrs[string(kv.Key)] = kv.Value.Emit()
			}
		}
	}
	require.NotNil(t, attrs)
	assert.Equal(t, "Ja****oe", attrs["candidate.name"], "姓名不以明文写入 span")
	assert.Equal(t, "2", attrs["record.skills"])
	assert.Equal(t, "1", attrs["record.page_count"])
}
