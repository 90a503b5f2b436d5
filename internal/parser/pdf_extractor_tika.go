package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// tikaPageCountKey Tika 元数据中的页数字段
const tikaPageCountKey = "xmpTPg:NPages"

// TikaBackend 基于 Apache Tika 服务器的文本提取。
// Tika 返回整篇文本，页数取自元数据。
type TikaBackend struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取链接注释文本
	extractAnnotations bool
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaBackend)

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(b *TikaBackend) {
		b.extractAnnotations = extract
	}
}

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(b *TikaBackend) {
		if timeout > 0 {
			b.Client.Timeout = timeout
		}
	}
}

// WithTikaHTTPClient 替换HTTP客户端
func WithTikaHTTPClient(client *http.Client) TikaOption {
	return func(b *TikaBackend) {
		if client != nil {
			b.Client = client
		}
	}
}

// NewTikaBackend 创建一个新的Tika后端
func NewTikaBackend(serverURL string, options ...TikaOption) *TikaBackend {
	b := &TikaBackend{
		ServerURL:          strings.TrimRight(serverURL, "/"),
		Client:             &http.Client{Timeout: 60 * time.Second},
		extractAnnotations: true,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Name 实现 PDFBackend
func (b *TikaBackend) Name() string { return "tika" }

// ExtractPages 实现 PDFBackend。
// 全部文本放在第一页，其余页补空串以保证切片长度等于页数。
func (b *TikaBackend) ExtractPages(ctx context.Context, data []byte, uri string) ([]string, error) {
	textBytes, err := b.put(ctx, "/tika", "text/plain", data, uri)
	if err != nil {
		return nil, err
	}
	text := string(textBytes)

	numPages := 0
	metaBytes, err := b.put(ctx, "/meta", "application/json", data, uri)
	if err == nil {
		numPages = parseTikaPageCount(metaBytes)
	}
	if numPages == 0 {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		numPages = 1
	}

	pages := make([]string, numPages)
	pages[0] = text
	return pages, nil
}

func (b *TikaBackend) put(ctx context.Context, path, accept string, data []byte, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", accept)
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	if !b.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return body, nil
}

// parseTikaPageCount 元数据中的页数可能是字符串或数字
func parseTikaPageCount(metaBytes []byte) int {
	var metadata map[string]interface{}
	if err := json.Unmarshal(metaBytes, &metadata); err != nil {
		return 0
	}
	switch v := metadata[tikaPageCountKey].(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0
		}
		return n
	case float64:
		if v < 0 {
			return 0
		}
		return int(v)
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				n, _ := strconv.Atoi(s)
				if n > 0 {
					return n
				}
			}
		}
	}
	return 0
}
