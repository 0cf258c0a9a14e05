package api

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// GenericMessage 兜底的用户提示
const GenericMessage = "Có lỗi xảy ra, thử lại sau nhé!"

var (
	ErrBadRequest   = errors.New("api: bad request")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrServer       = errors.New("api: server error")
	ErrNetwork      = errors.New("api: network error")
	ErrDecode       = errors.New("api: decode response")
)

// Error 后端返回的非 2xx 响应
type Error struct {
	Status int
	Detail string
	Method string
	Path   string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
}

// newStatusError 按状态码打上对应的哨兵标记
func newStatusError(e *Error) error {
	var err error = e
	switch {
	case e.Status == http.StatusUnauthorized:
		err = errors.Mark(err, ErrUnauthorized)
	case e.Status == http.StatusForbidden:
		err = errors.Mark(err, ErrForbidden)
	case e.Status == http.StatusNotFound:
		err = errors.Mark(err, ErrNotFound)
	case e.Status >= 500:
		err = errors.Mark(err, ErrServer)
	case e.Status >= 400:
		err = errors.Mark(err, ErrBadRequest)
	}
	return err
}

// StatusOf 提取 HTTP 状态码，非后端错误返回 0
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// UserMessage 面向用户的提示：优先取 hint，其次服务端 detail，最后兜底文案
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	var e *Error
	if errors.As(err, &e) && e.Detail != "" && e.Status < 500 {
		return e.Detail
	}
	return GenericMessage
}
