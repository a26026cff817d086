package handler

import (
	"errors"
	"net/http"

	"github.com/gentlehabits/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionOwnerKey = "owner"

type loginPayload struct {
	Passcode string `json:"passcode"`
}

// Login 校验口令并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.auth.Verify(payload.Passcode); err != nil {
		if errors.Is(err, service.ErrPasscodeMismatch) {
			respondError(c, http.StatusUnauthorized, "口令错误")
			return
		}
		handleServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionOwnerKey, true)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// AuthRequired 仅在配置了口令时要求登录
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.auth.Enabled() {
			c.Next()
			return
		}
		session := sessions.Default(c)
		if owner, _ := session.Get(sessionOwnerKey).(bool); !owner {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}
