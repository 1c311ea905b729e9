package api

import (
	"errors"
	"net/http"

	"tutorsite/internal/auth"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeInvalidEmail       = "ERR_INVALID_EMAIL"
	ErrCodeInvalidRole        = "ERR_INVALID_ROLE"
	ErrCodeInvalidStatus      = "ERR_INVALID_STATUS"
	ErrCodePasswordTooLong    = "ERR_PASSWORD_TOO_LONG"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeInvalidToken       = "ERR_INVALID_TOKEN"

	// 资源错误码
	ErrCodeUserNotFound         = "ERR_USER_NOT_FOUND"
	ErrCodeRegistrationNotFound = "ERR_REGISTRATION_NOT_FOUND"
	ErrCodeRegistrationExists   = "ERR_REGISTRATION_EXISTS"

	// 业务逻辑错误码
	ErrCodeMissingField     = "ERR_MISSING_FIELD"
	ErrCodeInvalidField     = "ERR_INVALID_FIELD"
	ErrCodeCannotDeleteSelf = "ERR_CANNOT_DELETE_SELF"
	ErrCodeExportFailed     = "ERR_EXPORT_FAILED"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// Conflict 409 资源冲突
func Conflict(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// authErrorStatus 认证错误到 HTTP 状态码与错误码的映射
var authErrorStatus = map[string]struct {
	status int
	code   string
}{
	auth.CodeMissingField:       {http.StatusBadRequest, ErrCodeMissingField},
	auth.CodeInvalidEmailFormat: {http.StatusBadRequest, ErrCodeInvalidEmail},
	auth.CodeInvalidRole:        {http.StatusBadRequest, ErrCodeInvalidRole},
	auth.CodeInvalidStatus:      {http.StatusBadRequest, ErrCodeInvalidStatus},
	auth.CodePasswordTooLong:    {http.StatusBadRequest, ErrCodePasswordTooLong},
	auth.CodeDuplicateEmail:     {http.StatusConflict, ErrCodeEmailExists},
	auth.CodeInvalidCredentials: {http.StatusUnauthorized, ErrCodeInvalidCredentials},
	auth.CodeAccountInactive:    {http.StatusUnauthorized, ErrCodeUserDisabled},
	auth.CodeTokenInvalid:       {http.StatusUnauthorized, ErrCodeInvalidToken},
	auth.CodeTokenExpired:       {http.StatusUnauthorized, ErrCodeSessionExpired},
	auth.CodeStoreReadFailure:   {http.StatusInternalServerError, ErrCodeInternalError},
	auth.CodeStoreWriteFailure:  {http.StatusInternalServerError, ErrCodeInternalError},
	auth.CodeTokenIssueFailure:  {http.StatusInternalServerError, ErrCodeInternalError},
}

// AuthErrorResponse 将认证核心返回的错误写成统一响应
func AuthErrorResponse(c *gin.Context, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		InternalError(c, "internal error")
		return
	}
	mapped, ok := authErrorStatus[authErr.Code]
	if !ok {
		InternalError(c, "internal error")
		return
	}
	if authErr.Field != "" {
		ErrorResponseWithDetails(c, mapped.status, mapped.code, authErr.Error(), gin.H{"field": authErr.Field})
		return
	}
	ErrorResponse(c, mapped.status, mapped.code, authErr.Message)
}
