package web

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindAndValidate 绑定请求参数并校验，失败时已写入 422 响应
func BindAndValidate(c *gin.Context, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		details := make([]FieldDetail, 0, len(ves))
		for _, fe := range ves {
			details = append(details, FieldDetail{
				Loc:  []string{"body", strings.ToLower(fe.Field())},
				Msg:  fieldMessage(fe),
				Type: fe.Tag(),
			})
		}
		ValidationError(c, details)
		return false
	}

	ValidationError(c, []FieldDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "ensure this value has at least " + fe.Param() + " characters"
	default:
		return "invalid value"
	}
}

// GetQuery 获取查询参数，带默认值
func GetQuery(c *gin.Context, key, defaultValue string) string {
	if val := c.Query(key); val != "" {
		return val
	}
	return defaultValue
}
