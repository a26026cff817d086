package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/locale"
	"github.com/gentlehabits/internal/progress"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxNeglectThresholdDays = 60

// Settings 描述用户可调整的偏好。
type Settings struct {
	Language             string
	NeglectThresholdDays int
}

// SettingsInput 用于更新偏好，零值字段沿用默认值。
type SettingsInput struct {
	Language             string
	NeglectThresholdDays int
}

// SettingService 提供偏好设置的读取与更新能力。
type SettingService struct {
	db       *gorm.DB
	defaults Settings
}

var settingKeys = []string{
	db.SettingKeyLanguage,
	db.SettingKeyNeglectThreshold,
}

// NewSettingService 构造 SettingService，defaults 通常来自启动配置。
func NewSettingService(gdb *gorm.DB, defaults Settings) *SettingService {
	return &SettingService{db: gdb, defaults: sanitizeSettings(defaults, Settings{
		Language:             locale.LanguageChinese,
		NeglectThresholdDays: progress.DefaultNeglectThresholdDays,
	})}
}

// GetSettings 读取偏好，如未设置将返回默认值。
func (s *SettingService) GetSettings() (Settings, error) {
	result := s.defaults

	var records []db.Setting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyLanguage:
			if language := locale.NormalizeLanguage(record.Value); language != "" {
				result.Language = language
			}
		case db.SettingKeyNeglectThreshold:
			if days, err := strconv.Atoi(strings.TrimSpace(record.Value)); err == nil && days > 0 {
				result.NeglectThresholdDays = days
			}
		}
	}

	return result, nil
}

// StoredLanguage 返回用户显式保存过的语言，未保存时 ok 为 false
func (s *SettingService) StoredLanguage() (string, bool, error) {
	var record db.Setting
	err := s.db.Where("key = ?", db.SettingKeyLanguage).Limit(1).Find(&record).Error
	if err != nil {
		return "", false, fmt.Errorf("load language setting: %w", err)
	}
	language := locale.NormalizeLanguage(record.Value)
	return language, language != "", nil
}

// DefaultLanguage 返回启动配置给出的兜底语言
func (s *SettingService) DefaultLanguage() string {
	return s.defaults.Language
}

// UpdateSettings 保存偏好。
func (s *SettingService) UpdateSettings(input SettingsInput) (Settings, error) {
	sanitized := sanitizeSettings(Settings(input), s.defaults)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyLanguage, sanitized.Language); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyNeglectThreshold, strconv.Itoa(sanitized.NeglectThresholdDays))
	})
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}

	return sanitized, nil
}

func sanitizeSettings(input, fallback Settings) Settings {
	result := Settings{
		Language:             locale.NormalizeLanguage(input.Language),
		NeglectThresholdDays: input.NeglectThresholdDays,
	}
	if result.Language == "" {
		result.Language = fallback.Language
	}
	if result.NeglectThresholdDays <= 0 {
		result.NeglectThresholdDays = fallback.NeglectThresholdDays
	}
	if result.NeglectThresholdDays > maxNeglectThresholdDays {
		result.NeglectThresholdDays = maxNeglectThresholdDays
	}
	return result
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.Setting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
