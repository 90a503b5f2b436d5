package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"resume-ranker/internal/logger"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/tracing"
	"resume-ranker/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"
)

// 表单字段
const (
	FormFieldFiles          = "files"
	FormFieldFile           = "file"
	FormFieldRequiredSkills = "required_skills"
)

// RankingService 处理器暴露给HTTP层的能力
type RankingService interface {
	ProcessBatch(ctx context.Context, req processor.BatchRequest) (*processor.BatchResult, error)
	ParseDocument(ctx context.Context, doc processor.Document) types.ResumeRecord
	ValidateDocument(doc processor.Document) error
}

// HealthCheck 单个依赖的健康检查
type HealthCheck func(ctx context.Context) error

// ResumeHandler 简历排名HTTP处理器
type ResumeHandler struct {
	service RankingService
	checks  map[string]HealthCheck
}

// HandlerOpt ResumeHandler 配置选项
type HandlerOpt func(*ResumeHandler)

// WithHealthCheck 注册依赖健康检查，例如 Redis
func WithHealthCheck(name string, check HealthCheck) HandlerOpt {
	return func(h *ResumeHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(service RankingService, opts ...HandlerOpt) *ResumeHandler {
	h := &ResumeHandler{service: service, checks: make(map[string]HealthCheck)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleRank 接收多份简历和逗号分隔的必需技能，返回提取结果和排名。
// format=text 时返回与命令行一致的纯文本报告。
func (h *ResumeHandler) HandleRank(ctx context.Context, c *app.RequestContext) {
	docs, err := readDocuments(c)
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, err)
		return
	}

	result, err := h.service.ProcessBatch(ctx, processor.BatchRequest{
		Documents:      docs,
		RequiredSkills: string(c.FormValue(FormFieldRequiredSkills)),
	})
	if err != nil {
		if ve, ok := processor.AsValidationError(err); ok {
			tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, consts.StatusBadRequest)
			c.JSON(consts.StatusBadRequest, utils.H{"error": ve.UserMessage(), "field": ve.Field})
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(consts.StatusOK, "%s", processor.FormatBatch(result))
		return
	}
	c.JSON(consts.StatusOK, result)
}

// HandleParse 解析单份简历，不做排名
func (h *ResumeHandler) HandleParse(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile(FormFieldFile)
	if err != nil {
		tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, consts.StatusBadRequest)
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Please upload a resume.", "field": FormFieldFile})
		return
	}
	doc, err := readDocument(fileHeader)
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, err)
		return
	}
	if err := h.service.ValidateDocument(doc); err != nil {
		if ve, ok := processor.AsValidationError(err); ok {
			tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, consts.StatusBadRequest)
			c.JSON(consts.StatusBadRequest, utils.H{"error": ve.UserMessage(), "field": FormFieldFile})
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, err)
		return
	}

	rec := h.service.ParseDocument(ctx, doc)
	c.JSON(consts.StatusOK, rec.View())
}

// HandleHealth 健康检查，任一依赖失败时返回 503
func (h *ResumeHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := consts.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Warn().Err(err).Str("dependency", name).Msg("健康检查失败")
			deps[name] = err.Error()
			status = consts.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := utils.H{"status": "ok"}
	if status != consts.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}

func (h *ResumeHandler) fail(ctx context.Context, c *app.RequestContext, status int, err error) {
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	logger.Ctx(ctx).Error().Err(err).Int("status", status).Str("path", string(c.Path())).Msg("请求处理失败")
	c.JSON(status, utils.H{"error": err.Error()})
}

// readDocuments 读取表单中的全部简历，没有表单时返回空列表交由服务层校验
func readDocuments(c *app.RequestContext) ([]processor.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	headers := form.File[FormFieldFiles]
	docs := make([]processor.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := readDocument(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readDocument(fh *multipart.FileHeader) (processor.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return processor.Document{}, fmt.Errorf("打开文件 %s 失败: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return processor.Document{}, fmt.Errorf("读取文件 %s 失败: %w", fh.Filename, err)
	}
	return processor.Document{Name: fh.Filename, Data: data}, nil
}
