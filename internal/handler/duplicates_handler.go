package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/usecase"
)

// DuplicatesHandler 重複レポート検出APIのハンドラー
type DuplicatesHandler struct {
	duplicateUseCase usecase.DuplicateDetectionUseCase
	defaultThreshold float64
}

func NewDuplicatesHandler(duplicateUseCase usecase.DuplicateDetectionUseCase, defaultThreshold float64) *DuplicatesHandler {
	return &DuplicatesHandler{
		duplicateUseCase: duplicateUseCase,
		defaultThreshold: defaultThreshold,
	}
}

// PostScan POST /duplicates/scans - 重複スキャンの実行（ボディは省略可）
func (h *DuplicatesHandler) PostScan(c *gin.Context) {
	var req model.DuplicateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	threshold := h.defaultThreshold
	if req.ThresholdMeters != nil {
		threshold = *req.ThresholdMeters
	}
	minScore := model.DefaultDuplicateMinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	scan, err := h.duplicateUseCase.ScanDuplicates(c.Request.Context(), threshold, minScore)
	if err != nil {
		respondError(c, "重複スキャンに失敗しました", err)
		return
	}
	c.JSON(http.StatusCreated, scan)
}

// GetScan GET /duplicates/scans/:id - 保存済みスキャン結果の取得
func (h *DuplicatesHandler) GetScan(c *gin.Context) {
	scan, err := h.duplicateUseCase.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "スキャン結果の取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, scan)
}
