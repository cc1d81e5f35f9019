package service

import "errors"

// 业务错误。handler 层通过 errors.Is 把它们映射为 HTTP 状态码。
var (
	// ErrAuthenticationFailed 学籍号或口令错误。
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrUnauthenticated 没有有效的会话（未登录、已登出或空闲超时）。
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied 非提问者尝试选择最佳回答。
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound 问题或回答不存在。
	ErrNotFound = errors.New("not found")
	// ErrValidation 提交内容为空或分类不合法。
	ErrValidation = errors.New("validation failed")
	// ErrConflict 最佳回答在读取与写入之间被其他请求修改。
	ErrConflict = errors.New("conflict")
	// ErrGeneration AI 生成失败（超时、配额、响应异常）。
	ErrGeneration = errors.New("generation failed")
	// ErrSearchUnavailable 未配置搜索后端。
	ErrSearchUnavailable = errors.New("search unavailable")
)
