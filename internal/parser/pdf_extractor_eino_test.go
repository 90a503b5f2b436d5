package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEinoBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := NewEinoBackend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eino", backend.Name())

	pages, err := backend.ExtractPages(ctx, buildTestPDF([]string{"Stanford University", "Go Kubernetes"}), "cv.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2, "按页拆分时每页一个文档")
	assert.Contains(t, pages[0], "Stanford University")
	assert.Contains(t, pages[1], "Go Kubernetes")
}

func TestEinoBackendCorrupt(t *testing.T) {
	backend, err := NewEinoBackend(context.Background())
	require.NoError(t, err)

	_, err = backend.ExtractPages(context.Background(), []byte("not a pdf"), "bad.pdf")
	assert.Error(t, err)
}
