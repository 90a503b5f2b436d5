package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"resume-ranker/internal/logger"
	"resume-ranker/internal/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

const (
	defaultLLMMaxInputRunes = 12000
	defaultLLMMaxRetries    = 2
	defaultLLMCallTimeout   = 60 * time.Second
	defaultLLMRetryDelay    = 2 * time.Second
)

// ErrNoJSONInReply LLM 回复中找不到 JSON 数组
var ErrNoJSONInReply = errors.New("no JSON array found in LLM reply")

const nerSystemPrompt = `你是一个命名实体识别引擎。请从用户给出的简历文本中找出所有组织机构名称(公司、学校、研究机构等)。
只返回一个JSON数组，不要任何解释。数组元素格式为 {"text": "<原文中的实体文本>", "label": "ORG"}。
保持实体在原文中出现的顺序；同一实体出现多次时需重复列出。没有实体时返回 []。`

// LLMRecognizer 使用大模型完成实体识别
type LLMRecognizer struct {
	llmModel      model.BaseChatModel
	logger        zerolog.Logger
	maxInputRunes int
	maxRetries    int
	callTimeout   time.Duration
	retryDelay    time.Duration
}

// LLMRecognizerOption LLMRecognizer 配置选项
type LLMRecognizerOption func(*LLMRecognizer)

// WithLLMMaxInputRunes 超出部分的文本会被截断后再发送
func WithLLMMaxInputRunes(n int) LLMRecognizerOption {
	return func(r *LLMRecognizer) {
		if n > 0 {
			r.maxInputRunes = n
		}
	}
}

// WithLLMRetry 设置最大重试次数和初始退避时间
func WithLLMRetry(maxRetries int, delay time.Duration) LLMRecognizerOption {
	return func(r *LLMRecognizer) {
		r.maxRetries = maxRetries
		r.retryDelay = delay
	}
}

// WithLLMCallTimeout 单次调用超时
func WithLLMCallTimeout(d time.Duration) LLMRecognizerOption {
	return func(r *LLMRecognizer) {
		if d > 0 {
			r.callTimeout = d
		}
	}
}

// WithLLMLogger 设置日志记录器
func WithLLMLogger(l zerolog.Logger) LLMRecognizerOption {
	return func(r *LLMRecognizer) {
		r.logger = l
	}
}

// NewLLMRecognizer 创建基于大模型的识别器
func NewLLMRecognizer(llmModel model.BaseChatModel, options ...LLMRecognizerOption) *LLMRecognizer {
	r := &LLMRecognizer{
		llmModel:      llmModel,
		logger:        logger.Logger,
		maxInputRunes: defaultLLMMaxInputRunes,
		maxRetries:    defaultLLMMaxRetries,
		callTimeout:   defaultLLMCallTimeout,
		retryDelay:    defaultLLMRetryDelay,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Name 后端名称
func (r *LLMRecognizer) Name() string { return "llm" }

// Recognize 实现 Recognizer
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(text) > r.maxInputRunes {
		text = string([]rune(text)[:r.maxInputRunes])
	}

	reply, err := r.callLLM(ctx, text)
	if err != nil {
		return nil, err
	}
	return parseEntityReply(reply)
}

func (r *LLMRecognizer) callLLM(ctx context.Context, text string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(nerSystemPrompt),
		schema.UserMessage(text),
	}

	retryDelay := r.retryDelay
	var response *schema.Message
	var err error

	for retry := 0; retry <= r.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(retryDelay):
				retryDelay *= 2
				r.logger.Debug().Int("retry", retry).Msg("重试LLM实体识别调用")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		response, err = r.llmModel.Generate(callCtx, messages)
		cancel()

		if err == nil {
			break
		}
		if !isRetryableError(err) || retry >= r.maxRetries {
			r.logger.Warn().Err(err).Int("attempts", retry+1).Msg("LLM实体识别调用失败")
			return "", fmt.Errorf("LLM Generate failed: %w", err)
		}
	}

	if response == nil {
		return "", fmt.Errorf("LLM Generate returned nil message")
	}
	r.logger.Debug().Str("reply", truncateForLog(response.Content, 80)).Msg("LLM实体识别响应")
	return response.Content, nil
}

// isRetryableError 判断错误是否应该重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host")
}

var fencedArrayRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

func parseEntityReply(reply string) ([]types.Entity, error) {
	jsonStr := extractJSONArray(reply)
	if jsonStr == "" {
		return nil, ErrNoJSONInReply
	}
	var entities []types.Entity
	if err := json.Unmarshal([]byte(jsonStr), &entities); err != nil {
		return nil, fmt.Errorf("解析实体JSON失败: %w", err)
	}

	out := entities[:0]
	for _, ent := range entities {
		ent.Text = strings.TrimSpace(ent.Text)
		if ent.Text == "" {
			continue
		}
		out = append(out, ent)
	}
	return out, nil
}

// extractJSONArray 从回复中取出JSON数组，支持 ```json 代码块和裸数组
func extractJSONArray(text string) string {
	if m := fencedArrayRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "[")
	if start == -1 {
		return ""
	}
	level := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			level++
		case ']':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

func truncateForLog(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
