package processor

import (
	"sort"
	"strings"

	"resume-ranker/internal/types"
)

// ParseRequiredSkills 解析逗号分隔的技能列表：去空白、转小写、丢弃空项、保序去重
func ParseRequiredSkills(input string) []string {
	var skills []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(input, ",") {
		skill := strings.ToLower(strings.TrimSpace(part))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}

// Rank 按命中的必需技能数降序排列，数量相同的保持批次顺序
func Rank(records []types.ResumeRecord, required []string) []types.RankingEntry {
	entries := make([]types.RankingEntry, len(records))
	for i := range records {
		entries[i] = types.RankingEntry{
			RecordID:   records[i].ID,
			Name:       records[i].Name,
			MatchCount: countMatches(&records[i], required),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MatchCount > entries[j].MatchCount
	})
	return entries
}

func countMatches(rec *types.ResumeRecord, required []string) int {
	count := 0
	seen := make(map[string]struct{}, len(required))
	for _, skill := range required {
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		if rec.HasSkill(skill) {
			count++
		}
	}
	return count
}

// LookupByName 返回批次中第一个同名记录。
// 同名候选人会被解析到同一条记录，批量服务改用 RecordID 回查。
func LookupByName(records []types.ResumeRecord, name string) (*types.ResumeRecord, bool) {
	for i := range records {
		if records[i].View().Name == name {
			return &records[i], true
		}
	}
	return nil, false
}

// buildCandidates 按 RecordID 把排名条目与记录关联，附加联系方式
func buildCandidates(records []types.ResumeRecord, ranking []types.RankingEntry) []types.RankedCandidate {
	byID := make(map[string]*types.ResumeRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	candidates := make([]types.RankedCandidate, 0, len(ranking))
	for i, entry := range ranking {
		c := types.RankedCandidate{
			Rank:       i + 1,
			RecordID:   entry.RecordID,
			Name:       entry.Name.OrElse(types.NotFound),
			MatchCount: entry.MatchCount,
		}
		if rec, ok := byID[entry.RecordID]; ok {
			view := rec.View()
			c.Emails = view.Emails
			c.Phones = view.Phones
		} else {
			c.Emails = []string{types.NotFound}
			c.Phones = []string{types.NotFound}
		}
		candidates = append(candidates, c)
	}
	return candidates
}
