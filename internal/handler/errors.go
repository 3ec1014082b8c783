package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-pulse/internal/domain/model"
)

// respondError ドメインエラーをHTTPステータスに変換して返す
func respondError(c *gin.Context, message string, err error) {
	var vErr *model.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &vErr), errors.Is(err, model.ErrInvalidVote):
		status = http.StatusBadRequest
		message = "バリデーションエラー"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "認証が必要です"
	case errors.Is(err, model.ErrReportNotFound), errors.Is(err, model.ErrScanNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %s: %v", c.Request.Method, c.FullPath(), message, err)
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// badRequest リクエスト形式の誤り
func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"details": details,
	})
}
