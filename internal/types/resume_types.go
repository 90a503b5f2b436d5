package types

// NotFound 展示层使用的缺失占位符
const NotFound = "Not Found"

// ResumeRecord 单份简历的结构化提取结果。
// 由生成它的流水线调用持有，生成后只读。
type ResumeRecord struct {
	ID           string           `json:"id"`     // 记录标识 (UUIDv7)，排名回查使用
	Source       string           `json:"source"` // 上传文件名或URI
	Name         Optional[string] `json:"name"`
	Emails       []string         `json:"emails"`
	Phones       []string         `json:"phones"`
	GitHub       Optional[string] `json:"github"`
	Universities []string         `json:"universities"`
	Degrees      []string         `json:"degrees"`
	Skills       []string         `json:"skills"` // 小写、去重、已排序
	PageCount    int              `json:"page_count"`
}

// HasSkill 判断记录的技能集合中是否包含 skill (skill 需已小写)
func (r *ResumeRecord) HasSkill(skill string) bool {
	for _, s := range r.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// RecordView 展示层视图，所有缺失字段均已替换为 "Not Found" 占位符
type RecordView struct {
	ID           string   `json:"id"`
	Source       string   `json:"source,omitempty"`
	Name         string   `json:"name"`
	Emails       []string `json:"email"`
	Phones       []string `json:"phone"`
	GitHub       string   `json:"github"`
	Universities []string `json:"university"`
	Degrees      []string `json:"degree"`
	Skills       []string `json:"skills"`
	PageCount    int      `json:"no_of_pages"`
}

// View 将记录转换为展示视图，统一执行占位符填充
func (r *ResumeRecord) View() RecordView {
	return RecordView{
		ID:           r.ID,
		Source:       r.Source,
		Name:         r.Name.OrElse(NotFound),
		Emails:       orNotFound(r.Emails),
		Phones:       orNotFound(r.Phones),
		GitHub:       r.GitHub.OrElse(NotFound),
		Universities: orNotFound(r.Universities),
		Degrees:      orNotFound(r.Degrees),
		Skills:       orNotFound(r.Skills),
		PageCount:    r.PageCount,
	}
}

func orNotFound(values []string) []string {
	if len(values) == 0 {
		return []string{NotFound}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// RankingEntry 排名条目：候选人与命中的必需技能数
type RankingEntry struct {
	RecordID   string           `json:"record_id"`
	Name       Optional[string] `json:"name"`
	MatchCount int              `json:"match_count"`
}

// RankedCandidate 展示层的排名结果，附带联系方式
type RankedCandidate struct {
	Rank       int      `json:"rank"`
	RecordID   string   `json:"record_id"`
	Name       string   `json:"name"`
	MatchCount int      `json:"match_count"`
	Emails     []string `json:"email"`
	Phones     []string `json:"phone"`
}

// Entity 实体识别结果中的一个片段
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityLabelOrganization 组织机构实体标签
const EntityLabelOrganization = "ORG"
