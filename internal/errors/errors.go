package errors

import (
	"fmt"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown      ErrorCode = 1000
	ErrInvalidParam ErrorCode = 1001
	ErrNotFound     ErrorCode = 1002
	ErrTimeout      ErrorCode = 1003

	// 出货错误 (2000-2999)
	ErrBadSlot      ErrorCode = 2000
	ErrMotorFailed  ErrorCode = 2001
	ErrMotorTimeout ErrorCode = 2002

	// 硬件错误 (3000-3999)
	ErrLineIO      ErrorCode = 3000
	ErrLineRequest ErrorCode = 3001
	ErrSchedPolicy ErrorCode = 3002
	ErrTemperature ErrorCode = 3003

	// 配置错误 (6000-6999)
	ErrConfigLoad    ErrorCode = 6000
	ErrConfigParse   ErrorCode = 6001
	ErrConfigMissing ErrorCode = 6002
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:      "未知错误",
	ErrInvalidParam: "无效的参数",
	ErrNotFound:     "资源未找到",
	ErrTimeout:      "操作超时",

	// 出货错误
	ErrBadSlot:      "无效的货道编号",
	ErrMotorFailed:  "电机未能动作",
	ErrMotorTimeout: "电机动作超时，可能卡住",

	// 硬件错误
	ErrLineIO:      "IO线读写失败",
	ErrLineRequest: "GPIO线申请失败",
	ErrSchedPolicy: "实时调度策略设置失败",
	ErrTemperature: "温度读取失败",

	// 配置错误
	ErrConfigLoad:    "配置加载失败",
	ErrConfigParse:   "配置解析失败",
	ErrConfigMissing: "配置项缺失",
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode `json:"code"`    // 错误码
	Message string    `json:"message"` // 错误消息
	Details string    `json:"details"` // 详细信息
	Cause   error     `json:"-"`       // 原始错误
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrBadSlot || e.Code == ErrInvalidParam:
		return 400 // Bad Request
	case e.Code == ErrNotFound:
		return 404 // Not Found
	default:
		return 500 // Internal Server Error
	}
}

// IsFatal 判断是否为不可恢复的进程级错误
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrSchedPolicy,
		ErrConfigLoad,
		ErrConfigMissing:
		return true
	default:
		return false
	}
}
