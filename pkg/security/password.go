package security

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt 哈希
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// CheckPassword 校验密码
func CheckPassword(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return errors.Mark(err, ErrPasswordMismatch)
	}
	return nil
}
