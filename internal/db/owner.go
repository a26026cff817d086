package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Owner 保存应用口令的 bcrypt 哈希，单用户场景只有一条记录
type Owner struct {
	gorm.Model
	PasscodeHash string `gorm:"not null"`
}

// EnsureOwner 若提供了口令，则创建或刷新唯一的 Owner 记录；口令为空时不做任何事。
func EnsureOwner(gdb *gorm.DB, passcode string) error {
	trimmed := strings.TrimSpace(passcode)
	if trimmed == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing Owner
	err := gdb.Order("id ASC").First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err == nil && bcrypt.CompareHashAndPassword([]byte(existing.PasscodeHash), []byte(trimmed)) == nil {
		return nil
	}

	hashed, hashErr := bcrypt.GenerateFromPassword([]byte(trimmed), bcrypt.DefaultCost)
	if hashErr != nil {
		return hashErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gdb.Create(&Owner{PasscodeHash: string(hashed)}).Error
	}

	existing.PasscodeHash = string(hashed)
	return gdb.Save(&existing).Error
}

// VerifyPasscode 比对口令；未配置 Owner 时任何口令都不通过
func VerifyPasscode(gdb *gorm.DB, passcode string) (bool, error) {
	var owner Owner
	if err := gdb.Order("id ASC").First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasscodeHash), []byte(strings.TrimSpace(passcode))); err != nil {
		return false, nil
	}
	return true, nil
}
