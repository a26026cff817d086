package handler

import (
	"github.com/gentlehabits/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	languageContextKey = "__request_language"
	languageQueryParam = "lang"
	languageCookieName = "gh_lang"
)

// LocaleMiddleware 在请求开始时协商语言并写入上下文，供错误文案与反馈使用
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		language := a.negotiateLanguage(c)
		c.Set(languageContextKey, language)
		c.Header("Content-Language", language)
		appendVaryHeader(c, "Accept-Language", "Cookie")
		c.Next()
	}
}

// language 返回当前请求的反馈语言
func (a *API) language(c *gin.Context) string {
	if language, ok := c.Get(languageContextKey); ok {
		if s, ok := language.(string); ok {
			return s
		}
	}
	return a.negotiateLanguage(c)
}

// negotiateLanguage 优先级：?lang=（写回 cookie）> cookie > 已保存的偏好 > Accept-Language > 配置默认值
func (a *API) negotiateLanguage(c *gin.Context) string {
	if override := locale.NormalizeLanguage(c.Query(languageQueryParam)); override != "" {
		setLanguageCookie(c, override)
		return override
	}

	cookie, _ := c.Cookie(languageCookieName)
	return locale.Resolve(
		cookie,
		a.settingsLanguage(c),
		locale.Negotiate(c.GetHeader("Accept-Language")),
		a.settings.DefaultLanguage(),
	)
}

// settingsLanguage 读取已保存的偏好；只有用户显式设置过才参与协商
func (a *API) settingsLanguage(c *gin.Context) string {
	language, ok, err := a.settings.StoredLanguage()
	if err != nil {
		c.Error(err)
		return ""
	}
	if !ok {
		return ""
	}
	return language
}
