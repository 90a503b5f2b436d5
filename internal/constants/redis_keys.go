package constants

// Redis Key 格式常量，实际写入时统一加上配置的 key_prefix
// 命名规范: {prefix}{module}:{entity}:{unique_id}
const (
	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityRecord 结构化记录实体
	EntityRecord = "record"

	// KeyParsedRecord 按文件内容缓存的解析结果 (STRING, JSON)
	// 格式: {prefix}parse:record:{parserVersion}:{parserFingerprint}:{md5}
	KeyParsedRecord = ParseModulePrefix + ":" + EntityRecord + ":%s:%s:%s"
)
