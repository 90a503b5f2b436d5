package constants

import "time"

const (
	// ParserVersion 解析规则版本，参与缓存键的构造，规则变化后旧缓存自然失效
	ParserVersion = "1"

	// DefaultParseCacheTTL 解析缓存的默认过期时间
	DefaultParseCacheTTL = 24 * time.Hour

	// EventTypeRankingCompleted 排名完成事件类型
	EventTypeRankingCompleted = "resume.ranking.completed"
)
