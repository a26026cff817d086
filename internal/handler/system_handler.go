package handler

import (
	"net/http"

	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
)

// HealthCheck 提供监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type settingsRequest struct {
	Language             string `json:"language"`
	NeglectThresholdDays int    `json:"neglect_threshold_days"`
}

// GetSettings 返回当前偏好设置。
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settingsPayload(settings)})
}

// UpdateSettings 保存偏好设置。
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsRequest
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	settings, err := a.settings.UpdateSettings(service.SettingsInput{
		Language:             payload.Language,
		NeglectThresholdDays: payload.NeglectThresholdDays,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settingsPayload(settings)})
}

func settingsPayload(settings service.Settings) gin.H {
	return gin.H{
		"language":               settings.Language,
		"neglect_threshold_days": settings.NeglectThresholdDays,
	}
}
