package types

import "time"

// RankingCompletedEvent 一批简历排名完成后发布的事件
type RankingCompletedEvent struct {
	BatchID        string            `json:"batch_id"`
	RequiredSkills []string          `json:"required_skills"`
	DocumentCount  int               `json:"document_count"`
	Ranking        []RankedCandidate `json:"ranking"`
	CompletedAt    time.Time         `json:"completed_at"`
}
