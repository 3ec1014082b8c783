package handler

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/platform/obs"
)

const currentUserKey = "currentUser"

// TokenVerifier Bearerトークンを検証して利用者を復元する
type TokenVerifier interface {
	Verify(token string) (*model.CurrentUser, error)
}

// RequestLogger リクエストIDを採番し、処理結果をログに出す
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header("X-Request-ID", reqID)
		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		log.Printf(
			"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
			reqID, c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), c.Writer.Size(), time.Since(start).Milliseconds(),
		)
	}
}

// AuthMiddleware Authorizationヘッダーを検証し、利用者をコンテキストに載せる
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, "認証が必要です", model.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := verifier.Verify(header)
		if err != nil {
			respondError(c, "認証が必要です", err)
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser 認証済みの利用者（未認証なら nil）
func CurrentUser(c *gin.Context) *model.CurrentUser {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.CurrentUser)
	return user
}
