package feishu

import "github.com/cockroachdb/errors"

var (
	ErrRequestFailed   = errors.New("feishu: request failed")
	ErrResponseInvalid = errors.New("feishu: invalid response")
	ErrAPIError        = errors.New("feishu: api error")
)
