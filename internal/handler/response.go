package handler

import (
	"net/http"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全レスポンス共通の封筒。
// 成功: {success:true, data:...} / 失敗: {success:false, error:{code,message}}
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(c echo.Context, status int, data any) error {
	return c.JSON(status, APIResponse{Success: true, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, APIResponse{
			Success: false,
			Error:   &APIError{Code: he.Code, Message: he.Message},
		})
	}

	//500（内部エラーの文言はそのまま出さない）
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   &APIError{Code: usecase.CodeInternal, Message: "internal error"},
	})
}

func writeErrorCode(c echo.Context, status int, code string, message string) error {
	return c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func getUserRoleFromContext(c echo.Context) (model.Role, bool) {
	v := c.Get(middleware.CtxUserRoleKey)
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return model.Role(s), true
}
