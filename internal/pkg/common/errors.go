package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 比對錯誤代碼，附帶原始錯誤的副本仍能與預定義錯誤比對
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"   // 400
	ErrCodeValidation       = "VALIDATION_ERROR"  // 400
	ErrCodeNotFound         = "NOT_FOUND"         // 404
	ErrCodeRecipeNotFound   = "RECIPE_NOT_FOUND"  // 404
	ErrCodeUserNotFound     = "USER_NOT_FOUND"    // 404
	ErrCodeAlreadyFollowing = "ALREADY_FOLLOWING" // 409
	ErrCodeTooLarge         = "PAYLOAD_TOO_LARGE" // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeRequestTimeout = "REQUEST_TIMEOUT" // 504

	// 僅供內部使用，不會出現在回應中
	errCodeCacheMiss = "CACHE_MISS"
	errCodeCacheFull = "CACHE_FULL"
)

// 預定義錯誤
var (
	ErrInternalError = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)

	// 業務錯誤
	ErrRecipeNotFound = NewError(ErrCodeRecipeNotFound, "Recipe not found", http.StatusNotFound, nil)
	ErrUserNotFound   = NewError(ErrCodeUserNotFound, "User not found", http.StatusNotFound, nil)
	ErrAlreadyFollow  = NewError(ErrCodeAlreadyFollowing, "Already following this user", http.StatusConflict, nil)

	// 快取錯誤
	ErrCacheMiss = NewError(errCodeCacheMiss, "快取未命中", http.StatusNotFound, nil)
	ErrCacheFull = NewError(errCodeCacheFull, "快取已滿", http.StatusInsufficientStorage, nil)
)

// StatusOf 取得錯誤對應的 HTTP 狀態碼與錯誤代碼
func StatusOf(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if IsValidationError(err) {
		return http.StatusBadRequest, ErrCodeValidation
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status, ce.Code
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// MessageOf 取得錯誤對外顯示的訊息
func MessageOf(err error) string {
	if IsValidationError(err) {
		var v *ValidationError
		errors.As(err, &v)
		return v.Error()
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ErrInternalError.Message
}
