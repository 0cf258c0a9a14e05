// Package form 表单校验：基于 config.Validator，返回逐字段的用户提示
package form

import (
	"sort"
	"strings"

	"github.com/lk2023060901/kidlingo/pkg/config"
)

// Error 表单校验失败，Fields 为 字段 -> 提示
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "form: " + strings.Join(parts, "; ")
}

// Messages 提示文案，key 为 "field.tag"，找不到时退回 "field"
type Messages map[string]string

// DefaultMessage 没有配置文案时的提示
const DefaultMessage = "Thông tin chưa hợp lệ"

// Check 校验 s，全部通过时返回 nil，否则返回 *Error
func Check(v *config.Validator, s any, msgs Messages) error {
	failed := v.Fields(s)
	if len(failed) == 0 {
		return nil
	}
	fe := &Error{Fields: make(map[string]string, len(failed))}
	for _, f := range failed {
		if _, dup := fe.Fields[f.Field]; dup {
			continue
		}
		msg, ok := msgs[f.Field+"."+f.Tag]
		if !ok {
			msg, ok = msgs[f.Field]
		}
		if !ok {
			msg = DefaultMessage
		}
		fe.Fields[f.Field] = msg
	}
	return fe
}
