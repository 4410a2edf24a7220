package plan

import "fmt"

// ErrorKind 是后端报告的结构化错误种类
type ErrorKind string

const (
	ErrNotSoftwareProject ErrorKind = "NOT_SOFTWARE_PROJECT"
	ErrScopeTooShort      ErrorKind = "SCOPE_TOO_SHORT"
	ErrTextTooGeneric     ErrorKind = "TEXT_TOO_GENERIC"
	ErrParse              ErrorKind = "PARSE_ERROR"
	// ErrRequestFailed 非 2xx 响应但没有 error 字段
	ErrRequestFailed ErrorKind = "REQUEST_FAILED"
)

// NetworkUnavailable 是传输层失败的信号，永远不会出现在结构化错误槽中
const NetworkUnavailable = "API_UNAVAILABLE"

// Known 判断是否属于稳定的错误词汇表
func (k ErrorKind) Known() bool {
	switch k {
	case ErrNotSoftwareProject, ErrScopeTooShort, ErrTextTooGeneric, ErrParse, ErrRequestFailed:
		return true
	}
	return false
}

// StructuredError 后端明确拒绝输入或无法解析自身输出。
// Kind、Message 和 Status 是三个独立的信号。
type StructuredError struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (e *StructuredError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
}
