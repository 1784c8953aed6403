package errs

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类，transport 层据此映射 HTTP 状态码
type Kind int

const (
	KindValidation Kind = iota + 1 // 请求格式/取值非法
	KindConflict                   // 唯一键冲突、存在依赖行等
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	Details []string // 可选：逐项错误（缺失的 id 列表等）
	Payload any      // 可选：随错误返回的结构化负载（如删除阻塞报告）
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Validation(format string, a ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, a...)}
}

func Conflict(format string, a ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, a...)}
}

func NotFound(format string, a ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, a...)}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Internal 包一层内部错误；对外只暴露 msg，err 只进日志
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf 取出错误分类；非 *Error 一律按 Internal 处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool { return KindOf(err) == k }

// AsError 便于 transport 层取 Details/Payload
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
