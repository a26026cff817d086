package db

import "gorm.io/gorm"

// Setting 存储用户偏好的键值对。
type Setting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (Setting) TableName() string {
	return "settings"
}

const (
	// SettingKeyLanguage 表示反馈文案语言。
	SettingKeyLanguage = "language"
	// SettingKeyNeglectThreshold 表示多少天未打卡视为需要“欢迎回来”提示。
	SettingKeyNeglectThreshold = "neglect_threshold_days"
)
