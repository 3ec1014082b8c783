package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"urban-pulse/internal/application"
	"urban-pulse/internal/domain/model"
)

// ReportsHandler 市民レポートに関するHTTPハンドラー
type ReportsHandler struct {
	reportService       application.ReportService
	clusterThreshold    float64
	clusterMinGroupSize int
}

// NewReportsHandler ReportsHandlerの新しいインスタンスを作成
// clusterThreshold と clusterMinGroupSize はクエリで省略されたときの既定値
func NewReportsHandler(reportService application.ReportService, clusterThreshold float64, clusterMinGroupSize int) *ReportsHandler {
	return &ReportsHandler{
		reportService:       reportService,
		clusterThreshold:    clusterThreshold,
		clusterMinGroupSize: clusterMinGroupSize,
	}
}

// GetMe GET /me - 認証済みユーザーの情報
func (h *ReportsHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}

// CreateReport POST /reports - レポートの作成
func (h *ReportsHandler) CreateReport(c *gin.Context) {
	var req model.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		respondError(c, "レポートの作成に失敗しました", err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports GET /reports - 一覧（?page=&page_size= でページ指定、?bbox= で範囲指定）
func (h *ReportsHandler) ListReports(c *gin.Context) {
	ctx := c.Request.Context()
	user := CurrentUser(c)

	var (
		reports []model.Report
		err     error
	)
	switch {
	case c.Query("bbox") != "":
		bbox, parseErr := parseBoundingBox(c.Query("bbox"))
		if parseErr != nil {
			badRequest(c, "bboxの形式が正しくありません (min_lon,min_lat,max_lon,max_lat)", parseErr)
			return
		}
		reports, err = h.reportService.ListReportsInBounds(ctx, user, bbox)

	case c.Query("page") != "" || c.Query("page_size") != "":
		page, parseErr := strconv.Atoi(c.DefaultQuery("page", "1"))
		if parseErr != nil {
			badRequest(c, "pageは整数で指定してください", parseErr)
			return
		}
		pageSize, parseErr := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if parseErr != nil {
			badRequest(c, "page_sizeは整数で指定してください", parseErr)
			return
		}
		reports, err = h.reportService.ListReportsPage(ctx, user, page, pageSize)

	default:
		reports, err = h.reportService.ListReports(ctx, user)
	}

	if err != nil {
		respondError(c, "レポートの取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.ReportsResponse{Content: reports})
}

// GetReportCoordinates GET /reports/coordinates - 全レポートの座標
func (h *ReportsHandler) GetReportCoordinates(c *gin.Context) {
	points, err := h.reportService.ReportCoordinates(c.Request.Context(), CurrentUser(c))
	if err != nil {
		respondError(c, "座標の取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetClusters GET /reports/clusters - 近接レポートのクラスタ
func (h *ReportsHandler) GetClusters(c *gin.Context) {
	threshold := h.clusterThreshold
	if v := c.Query("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "thresholdは数値で指定してください", err)
			return
		}
		threshold = f
	}

	minGroupSize := h.clusterMinGroupSize
	if v := c.Query("min_group_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "min_group_sizeは整数で指定してください", err)
			return
		}
		minGroupSize = n
	}

	clusters, err := h.reportService.NearbyClusters(c.Request.Context(), CurrentUser(c), threshold, minGroupSize)
	if err != nil {
		respondError(c, "クラスタの計算に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.ClustersResponse{
		ThresholdMeters: threshold,
		MinGroupSize:    minGroupSize,
		Clusters:        clusters,
	})
}

// GetReport GET /reports/:id - レポートの詳細
func (h *ReportsHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.GetReport(c.Request.Context(), CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "レポートの取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport PUT /reports/:id - レポートの更新（所有者のみ）
func (h *ReportsHandler) UpdateReport(c *gin.Context) {
	var req model.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	report, err := h.reportService.UpdateReport(c.Request.Context(), CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, "レポートの更新に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport DELETE /reports/:id - レポートの削除（所有者のみ）
func (h *ReportsHandler) DeleteReport(c *gin.Context) {
	if err := h.reportService.DeleteReport(c.Request.Context(), CurrentUser(c), c.Param("id")); err != nil {
		respondError(c, "レポートの削除に失敗しました", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VoteReport PUT /reports/:id/vote - 評価の投票
func (h *ReportsHandler) VoteReport(c *gin.Context) {
	var req model.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}
	if req.Value == nil {
		badRequest(c, "valueは必須です", nil)
		return
	}

	reportID := c.Param("id")
	rating, err := h.reportService.Vote(c.Request.Context(), CurrentUser(c), reportID, *req.Value)
	if err != nil {
		respondError(c, "投票に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.RatingResponse{ReportID: reportID, Rating: rating})
}

// GetRating GET /reports/:id/rating - 平均評価
func (h *ReportsHandler) GetRating(c *gin.Context) {
	reportID := c.Param("id")
	rating, err := h.reportService.GetRating(c.Request.Context(), CurrentUser(c), reportID)
	if err != nil {
		respondError(c, "評価の取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.RatingResponse{ReportID: reportID, Rating: rating})
}

// ListUserReports GET /users/:id/reports - ユーザーのレポート一覧
func (h *ReportsHandler) ListUserReports(c *gin.Context) {
	reports, err := h.reportService.ListUserReports(c.Request.Context(), CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "レポートの取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.ReportsResponse{Content: reports})
}

// parseBoundingBox "min_lon,min_lat,max_lon,max_lat" 形式を解析する
func parseBoundingBox(raw string) (model.BoundingBox, error) {
	coords := strings.Split(raw, ",")
	if len(coords) != 4 {
		return model.BoundingBox{}, fmt.Errorf("4つの座標が必要です: %d個", len(coords))
	}

	values := make([]float64, 4)
	for i, s := range coords {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return model.BoundingBox{}, fmt.Errorf("%d番目の値が数値ではありません: %q", i+1, s)
		}
		values[i] = f
	}
	return model.BoundingBox{MinLon: values[0], MinLat: values[1], MaxLon: values[2], MaxLat: values[3]}, nil
}
