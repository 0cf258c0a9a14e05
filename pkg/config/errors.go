package config

import "github.com/cockroachdb/errors"

var (
	// ErrConfigFileNotFound 配置文件未找到
	ErrConfigFileNotFound = errors.New("config: file not found")

	// ErrValidationFailed 配置或表单验证失败
	ErrValidationFailed = errors.New("config: validation failed")

	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("config: cannot be nil")

	// ErrMergeFailed 配置合并失败
	ErrMergeFailed = errors.New("config: merge failed")
)
