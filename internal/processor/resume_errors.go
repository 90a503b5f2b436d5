package processor

import (
	"errors"
	"fmt"
)

// MissingInputMessage 缺少简历或必需技能时返回给用户的提示
const MissingInputMessage = "Please upload resumes and enter required skills."

// 定义基础错误类型
var (
	ErrNoDocuments      = errors.New("未上传简历")
	ErrNoRequiredSkills = errors.New("未填写必需技能")
	ErrTooManyDocuments = errors.New("简历数量超过上限")
	ErrDocumentTooLarge = errors.New("简历文件超过大小上限")
)

// ValidationError 批量请求校验失败，整批不做任何处理
type ValidationError struct {
	Field   string
	BaseErr error
	Message string // 面向用户的提示
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (字段:%s): %s", e.BaseErr, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s (字段:%s)", e.BaseErr, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// UserMessage 返回面向用户的提示
func (e *ValidationError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.BaseErr.Error()
}

// 错误构造函数
func NewNoDocumentsError() error {
	return &ValidationError{Field: "files", BaseErr: ErrNoDocuments, Message: MissingInputMessage}
}

func NewNoRequiredSkillsError() error {
	return &ValidationError{Field: "required_skills", BaseErr: ErrNoRequiredSkills, Message: MissingInputMessage}
}

func NewTooManyDocumentsError(count, limit int) error {
	detail := fmt.Sprintf("收到 %d 份，上限 %d 份", count, limit)
	return &ValidationError{
		Field:   "files",
		BaseErr: ErrTooManyDocuments,
		Message: fmt.Sprintf("Too many resumes: at most %d per request.", limit),
		Detail:  detail,
	}
}

func NewDocumentTooLargeError(name string, size, limit int64) error {
	return &ValidationError{
		Field:   "files",
		BaseErr: ErrDocumentTooLarge,
		Message: fmt.Sprintf("Resume %q is larger than %d bytes.", name, limit),
		Detail:  fmt.Sprintf("%s: %d > %d", name, size, limit),
	}
}

// AsValidationError 判断 err 是否为校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
