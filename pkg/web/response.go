package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应，detail 为字符串或字段错误列表
type ErrorBody struct {
	Detail any `json:"detail"`
}

// FieldDetail 字段级校验错误
type FieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// OK 200 JSON 响应
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 以 {"detail": message} 返回错误
func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{Detail: detail})
}

// AbortWithError 中断并返回错误
func AbortWithError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail})
}

// ValidationError 422，detail 为字段错误列表
func ValidationError(c *gin.Context, details []FieldDetail) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorBody{Detail: details})
}
