package errs

import (
	"github.com/pkg/errors"
)

// 协议异常分类：这些错误表示远端负载在当前上下文里形状不对，
// 调用方应降级处理（按空页 / 零计数），而不是中断。
const (
	CodeUnexpectedPayload = 1001
	CodeDecodeFailed      = 1002
	CodeStorageGone       = 1003
)

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	if e.Detail == "" {
		return e.Msg
	}
	return e.Msg + ": " + e.Detail
}

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Wrap 带调用栈包装，服务层边界用。
func (e *CodeError) Wrap() error {
	return errors.WithStack(e)
}

// CodeOf returns the code carried by err, or 0.
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}
