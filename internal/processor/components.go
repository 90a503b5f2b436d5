package processor

import (
	"context"
	"fmt"
	"time"

	"resume-ranker/internal/agent"
	"resume-ranker/internal/config"
	"resume-ranker/internal/parser"

	"github.com/rs/zerolog"
)

// BuildComponents 根据配置创建提取器和解析器，缓存与事件发布由调用方按需注入
func BuildComponents(ctx context.Context, cfg *config.Config, catalog *parser.SkillCatalog, log zerolog.Logger, opts ...ComponentOpt) (*Components, *Settings, error) {
	backend, err := parser.NewPDFBackend(ctx,
		cfg.Extractor.Type,
		cfg.Tika.ServerURL,
		time.Duration(cfg.Tika.Timeout)*time.Second,
		parser.WithAnnotations(cfg.Tika.ExtractAnnotations),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("创建PDF提取后端失败: %w", err)
	}
	log.Info().Str("backend", backend.Name()).Msg("PDF提取后端已就绪")

	recognizer, err := buildRecognizer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	resumeParser := NewResumeParser(catalog,
		WithPatterns(parser.NewPatternLibrary(
			parser.WithLegacyEmailDomain(cfg.Patterns.LegacyEmailDomain),
		)),
		WithMatcher(parser.NewSkillMatcher(
			parser.WithFuzzyThreshold(cfg.Matcher.FuzzyThreshold),
			parser.WithCaseSensitiveExact(cfg.Matcher.CaseSensitiveExact),
		)),
		WithRecognizer(recognizer),
		WithParserLogger(log),
	)

	comp := NewComponents(append([]ComponentOpt{
		WithcompExtractor(parser.NewTextExtractor(backend, parser.WithExtractorLogger(log))),
		WithcompParser(resumeParser),
	}, opts...)...)

	set := &Settings{}
	for _, opt := range []SettingOpt{
		WithsetMaxdocuments(cfg.Batch.MaxDocuments),
		WithsetMaxdocumentbytes(cfg.Batch.MaxDocumentBytes),
		WithsetDocumenttimeout(config.GetDuration(cfg.Batch.DocumentTimeout, 30*time.Second)),
		WithsetLogger(log),
	} {
		opt(set)
	}
	return comp, set, nil
}

func buildRecognizer(cfg *config.Config, log zerolog.Logger) (OrganizationRecognizer, error) {
	switch cfg.Recognizer.Type {
	case "", "rule":
		return parser.NewEntityRecognizer(nil), nil
	case "llm":
		chatModel, err := agent.NewChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL,
			agent.WithTemperature(cfg.LLM.Temperature))
		if err != nil {
			return nil, fmt.Errorf("创建大模型客户端失败: %w", err)
		}
		backend := parser.NewLLMRecognizer(agent.NewRateLimitedChatModel(chatModel, cfg.LLM.QPM),
			parser.WithLLMMaxInputRunes(cfg.Recognizer.MaxInputRunes),
			parser.WithLLMRetry(cfg.Recognizer.MaxRetries, 2*time.Second),
			parser.WithLLMCallTimeout(config.GetDuration(cfg.Recognizer.CallTimeout, 60*time.Second)),
			parser.WithLLMLogger(log),
		)
		log.Info().Str("model", cfg.LLM.Model).Int("qpm", cfg.LLM.QPM).Msg("院校识别使用大模型")
		return parser.NewEntityRecognizer(backend), nil
	default:
		return nil, fmt.Errorf("unknown recognizer type %q", cfg.Recognizer.Type)
	}
}
