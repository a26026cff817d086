package handler

import (
	"fmt"
	"net/http"

	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportBackup 以附件形式下载全部数据
func (a *API) ExportBackup(c *gin.Context) {
	doc, err := a.backup.Export()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("gentlehabits-%s.json", doc.ExportedAt.Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, doc)
}

// ImportBackup 导入备份文档，导入的习惯总是新建
func (a *API) ImportBackup(c *gin.Context) {
	doc, err := service.DecodeBackup(c.Request.Body)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := a.backup.Import(doc)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	a.logger.Info("backup imported",
		zap.String("export_id", doc.ExportID),
		zap.Int("habits", result.Habits),
		zap.Int("entries", result.Entries),
	)
	c.JSON(http.StatusOK, gin.H{"imported": gin.H{"habits": result.Habits, "entries": result.Entries}})
}
