package kidapi

import (
	"encoding/json"
	"strings"
)

// ErrorBody 后端错误响应 {"detail": ...}
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// FieldDetail 422 校验错误条目
type FieldDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Text detail 为字符串时直接返回，为列表时拼接各条 msg
func (b ErrorBody) Text() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var fields []FieldDetail
	if err := json.Unmarshal(b.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(b.Detail)
}
