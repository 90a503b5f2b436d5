package processor

import (
	"strings"
	"testing"

	"resume-ranker/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestFormatReport(t *testing.T) {
	rec := types.ResumeRecord{
		Name:      types.Some("Jane Doe"),
		Emails:    []string{"a@example.com", "b@example.com"},
		Skills:    []string{"docker", "python"},
		PageCount: 2,
	}
	report := FormatReport("jane.pdf", rec.View())

	assert.True(t, strings.HasPrefix(report, reportRule+"\nExtracted Data from jane.pdf:\n"))
	assert.Contains(t, report, "Name: Jane Doe\n")
	assert.Contains(t, report, "Email: a@example.com, b@example.com\n")
	assert.Contains(t, report, "Phone: Not Found\n")
	assert.Contains(t, report, "GitHub: Not Found\n")
	assert.Contains(t, report, "Skills: docker, python\n")
	assert.Contains(t, report, "Total Pages: 2\n")
}

func TestFormatRanking(t *testing.T) {
	out := FormatRanking([]types.RankedCandidate{
		{Rank: 1, Name: "Bob", MatchCount: 2, Emails: []string{"bob@example.com"}, Phones: []string{types.NotFound}},
		{Rank: 2, Name: "Alice", MatchCount: 1, Emails: []string{types.NotFound}, Phones: []string{"555-123-4567"}},
	})
	assert.Equal(t, "1. Bob - Skill Match Count: 2\n"+
		"   Email: bob@example.com\n"+
		"   Phone: Not Found\n"+
		"2. Alice - Skill Match Count: 1\n"+
		"   Email: Not Found\n"+
		"   Phone: 555-123-4567\n", out)
	assert.Empty(t, FormatRanking(nil))
}

func TestFormatBatch(t *testing.T) {
	rec := types.ResumeRecord{ID: "1", Source: "jane.pdf", Name: types.Some("Jane Doe"), PageCount: 1}
	out := FormatBatch(&BatchResult{
		Records: []types.RecordView{rec.View()},
		Ranking: []types.RankedCandidate{{Rank: 1, Name: "Jane Doe", Emails: []string{types.NotFound}, Phones: []string{types.NotFound}}},
	})
	assert.Contains(t, out, "Extracted Data from jane.pdf:")
	assert.Contains(t, out, "\nRanked Resumes:\n1. Jane Doe - Skill Match Count: 0\n")
}
