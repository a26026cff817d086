package handler

import (
	"github.com/gentlehabits/internal/locale"
	"github.com/gin-gonic/gin"
)

var messageMap = map[string]string{
	"习惯不存在":         "Habit not found",
	"习惯配置无效":        "Invalid habit configuration",
	"方向和起始值创建后不可修改": "Direction and start value cannot change after creation",
	"习惯已归档":         "Habit is archived",
	"打卡数据无效":        "Invalid entry",
	"备份文件无效":        "Invalid backup document",
	"操作失败":          "Something went wrong",
	"请求参数不合法":       "Invalid request",
	"无效的习惯ID":       "Invalid habit id",
	"无效的日期":         "Invalid date",
	"无效的阈值":         "Invalid threshold",
	"口令错误":          "Wrong passcode",
	"请先登录":          "Please sign in first",
	"会话保存失败":        "Failed to save session",
}

// localizeMessage 将中文提示翻译为请求语言，未收录的文案原样返回
func localizeMessage(language, message string) string {
	if message == "" {
		return message
	}
	if locale.NormalizeLanguage(language) == locale.LanguageEnglish {
		if mapped, ok := messageMap[message]; ok {
			return mapped
		}
	}
	return message
}

// contextLanguage 读取 LocaleMiddleware 写入的语言，未经过中间件时为中文
func contextLanguage(c *gin.Context) string {
	if language, ok := c.Get(languageContextKey); ok {
		if s, ok := language.(string); ok {
			return s
		}
	}
	return locale.LanguageChinese
}
