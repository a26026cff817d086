package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gentlehabits/internal/db"
	"gorm.io/gorm"
)

// ErrPasscodeMismatch 口令错误时返回
var ErrPasscodeMismatch = errors.New("passcode mismatch")

// AuthService 校验单用户口令
type AuthService struct {
	db      *gorm.DB
	enabled bool
}

// NewAuthService 构造 AuthService，passcode 为空表示不启用口令保护
func NewAuthService(gdb *gorm.DB, passcode string) (*AuthService, error) {
	if err := db.EnsureOwner(gdb, passcode); err != nil {
		return nil, fmt.Errorf("ensure owner: %w", err)
	}
	return &AuthService{db: gdb, enabled: strings.TrimSpace(passcode) != ""}, nil
}

// Enabled 是否需要登录
func (s *AuthService) Enabled() bool {
	return s != nil && s.enabled
}

// Verify 校验口令，未启用时总是通过
func (s *AuthService) Verify(passcode string) error {
	if !s.Enabled() {
		return nil
	}
	ok, err := db.VerifyPasscode(s.db, passcode)
	if err != nil {
		return fmt.Errorf("verify passcode: %w", err)
	}
	if !ok {
		return ErrPasscodeMismatch
	}
	return nil
}
