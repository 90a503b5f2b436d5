package processor

import (
	"context"
	"errors"
	"io"
	"sync"

	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"
)

// fakeExtractor 把文件内容当作文本返回，空内容视为提取失败
type fakeExtractor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, r io.Reader, uri string) parser.ExtractResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 || ctx.Err() != nil {
		return parser.ExtractResult{}
	}
	return parser.ExtractResult{Text: string(data), PageCount: 1}
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingRecognizer struct{}

func (failingRecognizer) RecognizeOrganizations(context.Context, string) ([]string, error) {
	return nil, errors.New("recognizer unavailable")
}

type memoryCache struct {
	mu      sync.Mutex
	records map[string]types.ResumeRecord
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{records: make(map[string]types.ResumeRecord)}
}

func (c *memoryCache) GetRecord(_ context.Context, fingerprint, contentMD5 string) (*types.ResumeRecord, bool, error) {
	key := fingerprint + ":" + contentMD5
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	rec, ok := c.records[key]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (c *memoryCache) SetRecord(_ context.Context, fingerprint, contentMD5 string, rec *types.ResumeRecord) error {
	key := fingerprint + ":" + contentMD5
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = *rec
	return nil
}

func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

type recordingPublisher struct {
	events []*types.RankingCompletedEvent
	err    error
}

func (p *recordingPublisher) PublishRankingCompleted(_ context.Context, event *types.RankingCompletedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

var testCatalog = parser.NewSkillCatalog([]string{"Python", "docker", "SQL", "go"})

const janeResume = `jane doe
jane.doe@example.com | +1 555-123-4567
https://github.com/janedoe
Bachelor of Science, Stanford University
Skills: Python, Docker`
