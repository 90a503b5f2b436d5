package processor

import (
	"context"
	"io"

	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"
)

//
// 解析相关接口
//

// TextExtractor PDF文本提取接口，失败时返回空文本和0页，不返回错误
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, uri string) parser.ExtractResult
}

// OrganizationRecognizer 院校识别接口
type OrganizationRecognizer interface {
	RecognizeOrganizations(ctx context.Context, text string) ([]string, error)
}

//
// 基础设施接口
//

// ParseCache 按解析器指纹和文件内容MD5缓存解析结果
type ParseCache interface {
	// GetRecord 命中时返回 (record, true, nil)
	GetRecord(ctx context.Context, fingerprint, contentMD5 string) (*types.ResumeRecord, bool, error)
	SetRecord(ctx context.Context, fingerprint, contentMD5 string, record *types.ResumeRecord) error
}

// EventPublisher 排名完成事件发布接口
type EventPublisher interface {
	PublishRankingCompleted(ctx context.Context, event *types.RankingCompletedEvent) error
}

// Document 一份上传的简历
type Document struct {
	Name string
	Data []byte
}

// BatchRequest 一次排名请求：若干简历 + 逗号分隔的必需技能
type BatchRequest struct {
	Documents      []Document
	RequiredSkills string
}

// BatchResult 排名结果
type BatchResult struct {
	BatchID        string                  `json:"batch_id"`
	RequiredSkills []string                `json:"required_skills"`
	Records        []types.RecordView      `json:"records"`
	Ranking        []types.RankedCandidate `json:"ranking"`
}
