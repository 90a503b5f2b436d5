package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	"resume-ranker/internal/tracing"
	"resume-ranker/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrExtractorNotInit = errors.New("extractor is not initialized") // 提取器未初始化错误
	ErrParserNotInit    = errors.New("parser is not initialized")    // 解析器未初始化错误
)

// 定义tracer
var tracer = otel.Tracer("processor")

// ResumeService 批量解析并排名简历。
// 组件构造后只读，可被多个请求并发调用。
type ResumeService struct {
	components Components
	settings   Settings
}

// NewResumeService 使用明确分离的组件和设置创建服务
func NewResumeService(comp *Components, set *Settings, opts ...SettingOpt) (*ResumeService, error) {
	if comp == nil || comp.Extractor == nil {
		return nil, ErrExtractorNotInit
	}
	if comp.Parser == nil {
		return nil, ErrParserNotInit
	}
	settings := Settings{Logger: zerolog.Nop()}
	if set != nil {
		settings = *set
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &ResumeService{components: *comp, settings: settings}, nil
}

// ProcessBatch 解析一批简历并按必需技能的命中数排名。
// 输入缺失或超过限制时返回 *ValidationError，此时不处理任何文件。
func (s *ResumeService) ProcessBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.ProcessBatch",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	required, err := s.validate(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	batchID := newRecordID()
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.documents", len(req.Documents)),
		attribute.StringSlice("batch.required_skills", required),
	)
	log := s.settings.Logger.With().Str("batch_id", batchID).Logger()
	log.Info().Int("documents", len(req.Documents)).Strs("required_skills", required).Msg("开始处理简历批次")

	records := make([]types.ResumeRecord, 0, len(req.Documents))
	for _, doc := range req.Documents {
		if err := ctx.Err(); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
			return nil, err
		}
		rec := s.ParseDocument(ctx, doc)
		if e := log.Debug(); e.Enabled() {
			e.Msg(FormatReport(doc.Name, rec.View()))
		}
		records = append(records, rec)
	}
	span.AddEvent("documents parsed")

	ranking := Rank(records, required)
	result := &BatchResult{
		BatchID:        batchID,
		RequiredSkills: required,
		Records:        make([]types.RecordView, 0, len(records)),
		Ranking:        buildCandidates(records, ranking),
	}
	for i := range records {
		result.Records = append(result.Records, records[i].View())
	}

	s.publish(ctx, log, result)

	span.SetStatus(codes.Ok, "处理成功")
	log.Info().Int("ranked", len(result.Ranking)).Msg("简历批次处理完成")
	return result, nil
}

func (s *ResumeService) validate(req BatchRequest) ([]string, error) {
	if len(req.Documents) == 0 {
		return nil, NewNoDocumentsError()
	}
	required := ParseRequiredSkills(req.RequiredSkills)
	if len(required) == 0 {
		return nil, NewNoRequiredSkillsError()
	}
	if limit := s.settings.MaxDocuments; limit > 0 && len(req.Documents) > limit {
		return nil, NewTooManyDocumentsError(len(req.Documents), limit)
	}
	for _, doc := range req.Documents {
		if err := s.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}
	return required, nil
}

// ValidateDocument 检查单份简历是否超过 max_document_bytes，超过时返回 *ValidationError
func (s *ResumeService) ValidateDocument(doc Document) error {
	if limit := s.settings.MaxDocumentBytes; limit > 0 {
		if size := int64(len(doc.Data)); size > limit {
			return NewDocumentTooLargeError(doc.Name, size, limit)
		}
	}
	return nil
}

// ParseDocument 提取并解析单份简历。
// 提取失败得到空记录 (0页)，不会返回错误。
func (s *ResumeService) ParseDocument(ctx context.Context, doc Document) types.ResumeRecord {
	ctx, span := tracer.Start(ctx, "ResumeService.ParseDocument")
	defer span.End()
	span.SetAttributes(attribute.String("document.name", tracing.SafeFileName(doc.Name)))

	if s.settings.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.DocumentTimeout)
		defer cancel()
	}

	log := s.settings.Logger.With().Str("document", doc.Name).Logger()
	contentMD5 := md5Hex(doc.Data)
	fingerprint := s.components.Parser.Fingerprint()
	id := newRecordID()

	if s.components.Cache != nil {
		cached, ok, err := s.components.Cache.GetRecord(ctx, fingerprint, contentMD5)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("读取解析缓存失败，重新解析")
		case ok:
			span.AddEvent("parse cache hit")
			rec := *cached
			rec.ID = id
			rec.Source = doc.Name
			annotateRecord(span, rec)
			return rec
		}
	}

	start := time.Now()
	extracted := s.components.Extractor.Extract(ctx, bytes.NewReader(doc.Data), doc.Name)
	span.AddEvent("text extracted", trace.WithAttributes(attribute.Int("document.pages", extracted.PageCount)))
	if extracted.PageCount == 0 {
		log.Warn().Msg("未能从文件中提取文本")
	}

	outcome := s.components.Parser.Analyze(ctx, extracted.Text, extracted.PageCount)
	rec := outcome.Record
	rec.ID = id
	rec.Source = doc.Name
	log.Debug().Dur("elapsed", time.Since(start)).Int("skills", len(rec.Skills)).Msg("简历解析完成")
	annotateRecord(span, rec)

	// 提取失败或院校识别降级的结果不缓存
	if s.components.Cache != nil && outcome.Cacheable() {
		if err := s.components.Cache.SetRecord(ctx, fingerprint, contentMD5, &rec); err != nil {
			log.Warn().Err(err).Msg("写入解析缓存失败")
		}
	}
	return rec
}

// annotateRecord 在 span 上记录解析摘要，候选人姓名经掩码处理
func annotateRecord(span trace.Span, rec types.ResumeRecord) {
	span.SetAttributes(
		attribute.Int("record.page_count", rec.PageCount),
		attribute.Int("record.skills", len(rec.Skills)),
	)
	if name, ok := rec.Name.Get(); ok {
		span.SetAttributes(attribute.String("candidate.name",
			tracing.SafeAttributeValue("candidate.name", name, tracing.DefaultMaxLength)))
	}
}

func (s *ResumeService) publish(ctx context.Context, log zerolog.Logger, result *BatchResult) {
	if s.components.Publisher == nil {
		return
	}
	event := &types.RankingCompletedEvent{
		BatchID:        result.BatchID,
		RequiredSkills: result.RequiredSkills,
		DocumentCount:  len(result.Records),
		Ranking:        result.Ranking,
		CompletedAt:    time.Now().UTC(),
	}
	if err := s.components.Publisher.PublishRankingCompleted(ctx, event); err != nil {
		log.Error().Err(err).Msg("发布排名完成事件失败")
	}
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
