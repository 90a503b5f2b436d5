package processor

import (
	"fmt"
	"strings"

	"resume-ranker/internal/types"
)

const reportRule = "-----------------------------------------------------------------------------"

// FormatReport 单份简历的提取报告
func FormatReport(source string, v types.RecordView) string {
	var sb strings.Builder
	sb.WriteString(reportRule + "\n")
	fmt.Fprintf(&sb, "Extracted Data from %s:\n", source)
	sb.WriteString(reportRule + "\n")
	fmt.Fprintf(&sb, "Name: %s\n", v.Name)
	fmt.Fprintf(&sb, "Email: %s\n", strings.Join(v.Emails, ", "))
	fmt.Fprintf(&sb, "Phone: %s\n", strings.Join(v.Phones, ", "))
	fmt.Fprintf(&sb, "GitHub: %s\n", v.GitHub)
	fmt.Fprintf(&sb, "University: %s\n", strings.Join(v.Universities, ", "))
	fmt.Fprintf(&sb, "Degree: %s\n", strings.Join(v.Degrees, ", "))
	fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(v.Skills, ", "))
	fmt.Fprintf(&sb, "Total Pages: %d\n", v.PageCount)
	sb.WriteString(reportRule + "\n")
	return sb.String()
}

// FormatRanking 排名列表，每位候选人附带邮箱和电话
func FormatRanking(candidates []types.RankedCandidate) string {
	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s - Skill Match Count: %d\n", c.Rank, c.Name, c.MatchCount)
		fmt.Fprintf(&sb, "   Email: %s\n", strings.Join(c.Emails, ", "))
		fmt.Fprintf(&sb, "   Phone: %s\n", strings.Join(c.Phones, ", "))
	}
	return sb.String()
}

// FormatBatch 整批报告：逐份提取结果，随后是排名
func FormatBatch(result *BatchResult) string {
	var sb strings.Builder
	for _, rec := range result.Records {
		sb.WriteString(FormatReport(rec.Source, rec))
	}
	sb.WriteString("\nRanked Resumes:\n")
	sb.WriteString(FormatRanking(result.Ranking))
	return sb.String()
}
