package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 创建一个模拟的Tika服务器，用于测试
func createMockTikaServer(t *testing.T, text, meta string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "cv.pdf", r.Header.Get("X-Tika-Resource-Name"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/tika":
			assert.Equal(t, "text/plain", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte(text))
		case "/meta":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			if meta == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(meta))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewTikaBackend(t *testing.T) {
	b := NewTikaBackend("http://localhost:9998/")
	assert.Equal(t, "http://localhost:9998", b.ServerURL)
	assert.Equal(t, 60*time.Second, b.Client.Timeout, "HTTP客户端超时应为60秒")
	assert.True(t, b.extractAnnotations)

	custom := &http.Client{}
	b = NewTikaBackend("http://tika", WithTikaHTTPClient(custom), WithTikaTimeout(5*time.Second), WithAnnotations(false))
	assert.Same(t, custom, b.Client)
	assert.Equal(t, 5*time.Second, b.Client.Timeout)
	assert.False(t, b.extractAnnotations)
}

func TestTikaBackendPageCountFromMetadata(t *testing.T) {
	server := createMockTikaServer(t, "Jane Doe\nGo developer", `{"Content-Type":"application/pdf","xmpTPg:NPages":"3"}`, http.StatusOK)

	pages, err := NewTikaBackend(server.URL).ExtractPages(context.Background(), []byte("%PDF"), "cv.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "Jane Doe\nGo developer", pages[0])
	assert.Empty(t, pages[1])
}

func TestTikaBackendMissingMetadata(t *testing.T) {
	server := createMockTikaServer(t, "Jane Doe", "", http.StatusOK)

	pages, err := NewTikaBackend(server.URL).ExtractPages(context.Background(), []byte("%PDF"), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, pages, "有文本但缺少页数时按1页处理")
}

func TestTikaBackendServerError(t *testing.T) {
	server := createMockTikaServer(t, "", "", http.StatusInternalServerError)

	_, err := NewTikaBackend(server.URL).ExtractPages(context.Background(), []byte("%PDF"), "cv.pdf")
	assert.Error(t, err)

	res := NewTextExtractor(NewTikaBackend(server.URL)).ExtractBytes(context.Background(), []byte("%PDF"), "cv.pdf")
	assert.Equal(t, ExtractResult{}, res)
}

func TestParseTikaPageCount(t *testing.T) {
	assert.Equal(t, 2, parseTikaPageCount([]byte(`{"xmpTPg:NPages": 2}`)))
	assert.Equal(t, 4, parseTikaPageCount([]byte(`{"xmpTPg:NPages": "4"}`)))
	assert.Equal(t, 5, parseTikaPageCount([]byte(`{"xmpTPg:NPages": ["5"]}`)))
	assert.Equal(t, 0, parseTikaPageCount([]byte(`{}`)))
	assert.Equal(t, 0, parseTikaPageCount([]byte(`not json`)))
}
