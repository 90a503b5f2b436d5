package processor

import (
	"testing"

	"resume-ranker/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequiredSkills(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"普通列表", "Python, Docker,SQL", []string{"python", "docker", "sql"}},
		{"空项丢弃", " , python,, ", []string{"python"}},
		{"重复项保留第一次", "Go, go, GO", []string{"go"}},
		{"全部为空", " , ,", nil},
		{"空字符串", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequiredSkills(tt.input))
		})
	}
}

func record(id, name string, skills ...string) types.ResumeRecord {
	rec := types.ResumeRecord{ID: id, Skills: skills}
	if name != "" {
		rec.Name = types.Some(name)
	}
	return rec
}

func TestRankOrdersByMatchCount(t *testing.T) {
	records := []types.ResumeRecord{
		record("a", "Alice", "python"),
		record("b", "Bob", "docker", "python"),
		record("c", ""),
	}
	ranking := Rank(records, []string{"python", "docker"})

	require.Len(t, ranking, 3)
	assert.Equal(t, "b", ranking[0].RecordID)
	assert.Equal(t, 2, ranking[0].MatchCount)
	assert.Equal(t, "a", ranking[1].RecordID)
	assert.Equal(t, "c", ranking[2].RecordID)
	assert.Equal(t, 0, ranking[2].MatchCount)
	assert.False(t, ranking[2].Name.Valid)
}

func TestRankIsStable(t *testing.T) {
	records := []types.ResumeRecord{
		record("1", "First", "go"),
		record("2", "Second", "sql"),
		record("3", "Third", "go"),
		record("4", "Fourth", "go", "sql"),
	}
	ranking := Rank(records, []string{"go", "sql"})

	ids := make([]string, len(ranking))
	for i, e := range ranking {
		ids[i] = e.RecordID
	}
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids, "命中数相同的保持批次顺序")
}

func TestRankDuplicateRequiredSkillsCountOnce(t *testing.T) {
	records := []types.ResumeRecord{record("a", "A", "go")}
	ranking := Rank(records, []string{"go", "go"})
	assert.Equal(t, 1, ranking[0].MatchCount)
}

func TestRankEmptyBatch(t *testing.T) {
	assert.Empty(t, Rank(nil, []string{"go"}))
}

func TestLookupByName(t *testing.T) {
	records := []types.ResumeRecord{
		record("1", "John Smith", "go"),
		record("2", "John Smith", "sql"),
		record("3", ""),
	}
	rec, ok := LookupByName(records, "John Smith")
	require.True(t, ok)
	assert.Equal(t, "1", rec.ID, "同名时返回第一条")

	rec, ok = LookupByName(records, types.NotFound)
	require.True(t, ok)
	assert.Equal(t, "3", rec.ID)

	_, ok = LookupByName(records, "Nobody")
	assert.False(t, ok)
}

func TestBuildCandidatesUsesRecordID(t *testing.T) {
	first := record("1", "John Smith", "go")
	first.Emails = []string{"john1@example.com"}
	second := record("2", "John Smith", "go", "sql")
	second.Emails = []string{"john2@example.com"}
	records := []types.ResumeRecord{first, second}

	candidates := buildCandidates(records, Rank(records, []string{"go", "sql"}))
	require.Len(t, candidates, 2)
	assert.Equal(t, 1, candidates[0].Rank)
	assert.Equal(t, []string{"john2@example.com"}, candidates[0].Emails, "同名候选人各自关联自己的联系方式")
	assert.Equal(t, []string{types.NotFound}, candidates[0].Phones)
	assert.Equal(t, 2, candidates[1].Rank)
	assert.Equal(t, []string{"john1@example.com"}, candidates[1].Emails)
}

func TestBuildCandidatesUnknownRecord(t *testing.T) {
	candidates := buildCandidates(nil, []types.RankingEntry{{RecordID: "x", MatchCount: 1}})
	require.Len(t, candidates, 1)
	assert.Equal(t, types.NotFound, candidates[0].Name)
	assert.Equal(t, []string{types.NotFound}, candidates[0].Emails)
}
