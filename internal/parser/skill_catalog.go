package parser

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// DefaultCatalogColumn 技能表中技能名称所在列
const DefaultCatalogColumn = "technical skills"

// ErrCatalogColumnNotFound 技能表缺少指定列
var ErrCatalogColumnNotFound = errors.New("skill catalog column not found")

// SkillCatalog 已知技术技能的不可变集合。
// 进程启动时构造一次，之后以只读方式在所有解析调用间共享。
type SkillCatalog struct {
	terms         []string
	index         map[string]int
	exact         []*regexp.Regexp // 大小写不敏感的整词规则
	exactCaseSens []*regexp.Regexp // 大小写敏感的整词规则
	fingerprint   string           // 排序后技能列表的MD5
}

// NewSkillCatalog 由原始技能名构造目录：去除空白、转小写、丢弃空项并去重
func NewSkillCatalog(raw []string) *SkillCatalog {
	index := make(map[string]int, len(raw))
	terms := make([]string, 0, len(raw))
	for _, r := range raw {
		term := strings.ToLower(strings.TrimSpace(r))
		if term == "" {
			continue
		}
		if _, ok := index[term]; ok {
			continue
		}
		index[term] = 0
		terms = append(terms, term)
	}
	sort.Strings(terms)
	sum := md5.Sum([]byte(strings.Join(terms, "\n")))

	c := &SkillCatalog{
		terms:         terms,
		index:         index,
		exact:         make([]*regexp.Regexp, len(terms)),
		exactCaseSens: make([]*regexp.Regexp, len(terms)),
		fingerprint:   hex.EncodeToString(sum[:]),
	}
	for i, term := range terms {
		c.index[term] = i
		quoted := `\b` + regexp.QuoteMeta(term) + `\b`
		c.exactCaseSens[i] = regexp.MustCompile(quoted)
		c.exact[i] = regexp.MustCompile(`(?i)` + quoted)
	}
	return c
}

// LoadSkillCatalog 从CSV文件加载技能目录
func LoadSkillCatalog(path, column string) (*SkillCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开技能表 %s 失败: %w", path, err)
	}
	defer f.Close()

	catalog, err := ReadSkillCatalog(f, column)
	if err != nil {
		return nil, fmt.Errorf("读取技能表 %s 失败: %w", path, err)
	}
	return catalog, nil
}

// ReadSkillCatalog 从CSV内容读取技能目录，第一行为表头
func ReadSkillCatalog(r io.Reader, column string) (*SkillCatalog, error) {
	if column == "" {
		column = DefaultCatalogColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %q (empty file)", ErrCatalogColumnNotFound, column)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrCatalogColumnNotFound, column)
	}

	var raw []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col < len(record) {
			raw = append(raw, record[col])
		}
	}
	return NewSkillCatalog(raw), nil
}

// Len 技能数量
func (c *SkillCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.terms)
}

// Contains 判断技能是否在目录中 (大小写不敏感)
func (c *SkillCatalog) Contains(skill string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[strings.ToLower(strings.TrimSpace(skill))]
	return ok
}

// Terms 返回排序后的技能副本
func (c *SkillCatalog) Terms() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Fingerprint 目录内容的摘要，技能集合相同则相同，与输入顺序和大小写无关
func (c *SkillCatalog) Fingerprint() string {
	if c == nil {
		return ""
	}
	return c.fingerprint
}

func (c *SkillCatalog) exactPattern(i int, caseSensitive bool) *regexp.Regexp {
	if caseSensitive {
		return c.exactCaseSens[i]
	}
	return c.exact[i]
}
