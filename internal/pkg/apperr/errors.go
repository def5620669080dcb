package apperr

import "errors"

// Business Error Codes
const (
	CodeSuccess       = 0
	CodeBadRequest    = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeConflict      = 409
	CodeInternalError = 500

	CodeValidation    = 1001 // 缺失/非法字段
	CodeAuthorization = 1002 // 密码/密钥/角色不满足
	CodePostNotFound  = 2001
	CodePostCreateErr = 2002
	CodePostDeleteErr = 2003
)

// 错误分类哨兵，handler据此映射响应码
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
)

// AppError Application Error with code and message
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	kind    error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 支持errors.Is按分类匹配
func (e *AppError) Unwrap() error {
	return e.kind
}

// New Create new application error
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Validation 字段校验错误
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, kind: ErrValidation}
}

// Authorization 授权错误（密码不符、密钥无效、角色不足）
func Authorization(message string) *AppError {
	return &AppError{Code: CodeAuthorization, Message: message, kind: ErrAuthorization}
}

// NotFound 目标不存在（悬空parent等）
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, kind: ErrNotFound}
}

// Conflict 并发冲突（存储层重试后仍失败）
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, kind: ErrConflict}
}

// Wrap Wrap error with code
func Wrap(err error, code int) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{Code: code, Message: err.Error()}
}
