package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength 账号口令的最小长度，与注册接口的校验保持一致。
const MinPasswordLength = 8

const bcryptCost = bcrypt.DefaultCost

// ErrPasswordTooShort 口令长度不足
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// HashPassword 校验口令长度后生成 bcrypt 散列。账号口令只以散列形式落盘。
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 将候选口令与存储的散列比对，常数时间由 bcrypt 保证。
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}
