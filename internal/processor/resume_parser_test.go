package processor

import (
	"context"
	"testing"

	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestResumeParserParse(t *testing.T) {
	p := NewResumeParser(testCatalog)
	rec := p.Parse(context.Background(), janeResume, 2)

	assert.Equal(t, types.Some("Jane Doe"), rec.Name)
	assert.Equal(t, []string{"jane.doe@example.com"}, rec.Emails)
	assert.Equal(t, []string{"555-123-4567"}, rec.Phones)
	assert.Equal(t, types.Some("https://github.com/janedoe"), rec.GitHub)
	assert.Equal(t, []string{"Stanford University"}, rec.Universities)
	assert.Equal(t, []string{"Bachelor"}, rec.Degrees)
	assert.Equal(t, []string{"docker", "python"}, rec.Skills)
	assert.Equal(t, 2, rec.PageCount)
}

func TestResumeParserEmptyText(t *testing.T) {
	p := NewResumeParser(testCatalog)
	rec := p.Parse(context.Background(), "", 0)

	assert.False(t, rec.Name.Valid)
	assert.Empty(t, rec.Emails)
	assert.Empty(t, rec.Skills)

	view := rec.View()
	assert.Equal(t, types.NotFound, view.Name)
	assert.Equal(t, []string{types.NotFound}, view.Emails)
	assert.Equal(t, []string{types.NotFound}, view.Universities)
	assert.Equal(t, 0, view.PageCount)
}

func TestResumeParserRecognizerFailure(t *testing.T) {
	p := NewResumeParser(testCatalog,
		WithRecognizer(failingRecognizer{}),
		WithParserLogger(zerolog.Nop()),
	)
	rec := p.Parse(context.Background(), janeResume, 1)

	assert.Empty(t, rec.Universities, "识别失败时院校为空")
	assert.Equal(t, types.Some("Jane Doe"), rec.Name, "其他字段不受影响")
	assert.Equal(t, []string{"docker", "python"}, rec.Skills)

	outcome := p.Analyze(context.Background(), janeResume, 1)
	assert.Error(t, outcome.RecognizerErr)
	assert.False(t, outcome.Cacheable(), "院校识别降级的结果不可缓存")

	ok := NewResumeParser(testCatalog).Analyze(context.Background(), janeResume, 1)
	assert.NoError(t, ok.RecognizerErr)
	assert.True(t, ok.Cacheable())
	assert.False(t, NewResumeParser(testCatalog).Analyze(context.Background(), "", 0).Cacheable(), "0页不可缓存")
}

func TestResumeParserFingerprint(t *testing.T) {
	base := NewResumeParser(testCatalog).Fingerprint()
	assert.Len(t, base, 16)
	assert.Equal(t, base, NewResumeParser(parser.NewSkillCatalog([]string{"go", "sql", "docker", "python"})).Fingerprint(),
		"同样的技能集合得到同样的指纹")

	variants := map[string]*ResumeParser{
		"catalog":        NewResumeParser(parser.NewSkillCatalog([]string{"python"})),
		"threshold":      NewResumeParser(testCatalog, WithMatcher(parser.NewSkillMatcher(parser.WithFuzzyThreshold(90)))),
		"case sensitive": NewResumeParser(testCatalog, WithMatcher(parser.NewSkillMatcher(parser.WithCaseSensitiveExact(true)))),
		"legacy email":   NewResumeParser(testCatalog, WithPatterns(parser.NewPatternLibrary(parser.WithLegacyEmailDomain(true)))),
		"recognizer":     NewResumeParser(testCatalog, WithRecognizer(failingRecognizer{})),
	}
	for name, p := range variants {
		assert.NotEqual(t, base, p.Fingerprint(), name)
	}
}

func TestResumeParserNilOptionsKeepDefaults(t *testing.T) {
	p := NewResumeParser(testCatalog, WithPatterns(nil), WithMatcher(nil), WithRecognizer(nil))
	assert.Same(t, testCatalog, p.Catalog())
	rec := p.Parse(context.Background(), janeResume, 1)
	assert.NotEmpty(t, rec.Skills)
}
