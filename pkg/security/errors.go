package security

import "github.com/cockroachdb/errors"

var (
	ErrSecretKeyEmpty    = errors.New("security: jwt secret key is empty")
	ErrTokenInvalid      = errors.New("security: token is invalid")
	ErrTokenExpired      = errors.New("security: token is expired")
	ErrTokenMalformed    = errors.New("security: token is malformed")
	ErrAlgorithmMismatch = errors.New("security: signing algorithm mismatch")
	ErrPasswordMismatch  = errors.New("security: password does not match")
)
