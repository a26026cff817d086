package handler

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gentlehabits/internal/progress"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	dateFormat           = "2006-01-02"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": localizeMessage(contextLanguage(c), message)})
}

func respondErrorDetail(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{"error": localizeMessage(contextLanguage(c), message), "detail": err.Error()})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseOptionalDate(value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}

	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return nil, false
	}

	return &t, true
}

// today 返回服务器时区下的当天日期
func (a *API) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// dateQuery 解析 ?key=2006-01-02，缺省为今天
func (a *API) dateQuery(c *gin.Context, key string) (time.Time, bool) {
	parsed, ok := parseOptionalDate(c.Query(key))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	if parsed == nil {
		return a.today(), true
	}
	return *parsed, true
}

// handleServiceError 将服务层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	var cfgErr *progress.ConfigurationError

	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  localizeMessage(contextLanguage(c), "习惯配置无效"),
			"field":  cfgErr.Field,
			"reason": cfgErr.Reason,
		})
	case errors.Is(err, service.ErrHabitImmutableField):
		respondErrorDetail(c, http.StatusBadRequest, "方向和起始值创建后不可修改", err)
	case errors.Is(err, service.ErrHabitInvalid):
		respondErrorDetail(c, http.StatusBadRequest, "习惯配置无效", err)
	case errors.Is(err, service.ErrHabitArchived):
		respondError(c, http.StatusConflict, "习惯已归档")
	case errors.Is(err, service.ErrEntryInvalid):
		respondErrorDetail(c, http.StatusBadRequest, "打卡数据无效", err)
	case errors.Is(err, service.ErrBackupInvalid):
		respondErrorDetail(c, http.StatusBadRequest, "备份文件无效", err)
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

// setLanguageCookie 记住 ?lang= 显式选择的语言
func setLanguageCookie(c *gin.Context, language string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    language,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsHTTPS(c),
		MaxAge:   languageCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// requestIsHTTPS 兼容反向代理的 X-Forwarded-Proto
func requestIsHTTPS(c *gin.Context) bool {
	if proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		return strings.EqualFold(strings.TrimSpace(first), "https")
	}
	return c.Request != nil && c.Request.TLS != nil
}

// appendVaryHeader 合并已有的 Vary 值并去重
func appendVaryHeader(c *gin.Context, headers ...string) {
	values := strings.Split(c.Writer.Header().Get("Vary"), ",")
	values = append(values, headers...)

	merged := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(merged, v) {
			continue
		}
		merged = append(merged, v)
	}
	if len(merged) > 0 {
		c.Header("Vary", strings.Join(merged, ", "))
	}
}
