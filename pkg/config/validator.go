package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 基于 go-playground/validator 的验证器，同时用于配置和表单
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器，字段名优先取 json / mapstructure tag
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// FieldError 单个字段的验证失败
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Validate 验证结构体，失败时返回标记为 ErrValidationFailed 的错误
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return errors.Mark(errors.Newf("%s", formatValidationErrors(err)), ErrValidationFailed)
	}
	return nil
}

// Fields 验证结构体并返回逐字段的失败信息，全部通过时返回 nil
func (v *Validator) Fields(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []FieldError{{Tag: err.Error()}}
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// ValidateField 验证单个值
func (v *Validator) ValidateField(field any, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return errors.Mark(errors.Newf("%s", formatValidationErrors(err)), ErrValidationFailed)
	}
	return nil
}

func formatValidationErrors(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}

	var sb strings.Builder
	for i, fe := range ves {
		if i > 0 {
			sb.WriteString("; ")
		}
		field, param := fe.Field(), fe.Param()
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&sb, "field '%s' is required", field)
		case "min":
			fmt.Fprintf(&sb, "field '%s' must be at least %s", field, param)
		case "max":
			fmt.Fprintf(&sb, "field '%s' must be at most %s", field, param)
		case "oneof":
			fmt.Fprintf(&sb, "field '%s' must be one of [%s]", field, param)
		case "email":
			fmt.Fprintf(&sb, "field '%s' must be a valid email", field)
		case "url":
			fmt.Fprintf(&sb, "field '%s' must be a valid URL", field)
		case "gt":
			fmt.Fprintf(&sb, "field '%s' must be greater than %s", field, param)
		case "gte":
			fmt.Fprintf(&sb, "field '%s' must be greater than or equal to %s", field, param)
		default:
			fmt.Fprintf(&sb, "field '%s' failed validation '%s'", field, fe.Tag())
		}
	}
	return sb.String()
}
