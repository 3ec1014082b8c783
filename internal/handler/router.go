package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"urban-pulse/internal/metrics"
)

// HealthCheck 依存サービスの疎通確認
type HealthCheck func(ctx context.Context) error

// RouterDeps ルーターが必要とするハンドラーと共通部品
type RouterDeps struct {
	Reports    *ReportsHandler
	Duplicates *DuplicatesHandler
	Uploads    *UploadsHandler
	Geocode    *GeocodeHandler
	Verifier   TokenVerifier
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Health     HealthCheck
}

// NewRouter 全てのルートを登録したginエンジンを返す
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), deps.Metrics.Middleware())

	r.GET("/health", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/")
	api.Use(AuthMiddleware(deps.Verifier))

	api.GET("/me", deps.Reports.GetMe)

	api.POST("/reports", deps.Reports.CreateReport)
	api.GET("/reports", deps.Reports.ListReports)
	api.GET("/reports/coordinates", deps.Reports.GetReportCoordinates)
	api.GET("/reports/clusters", deps.Reports.GetClusters)
	api.POST("/reports/describe", deps.Uploads.Describe)
	api.GET("/reports/:id", deps.Reports.GetReport)
	api.PUT("/reports/:id", deps.Reports.UpdateReport)
	api.DELETE("/reports/:id", deps.Reports.DeleteReport)
	api.PUT("/reports/:id/vote", deps.Reports.VoteReport)
	api.GET("/reports/:id/rating", deps.Reports.GetRating)
	api.GET("/users/:id/reports", deps.Reports.ListUserReports)

	api.POST("/duplicates/scans", deps.Duplicates.PostScan)
	api.GET("/duplicates/scans/:id", deps.Duplicates.GetScan)

	api.POST("/uploads/multipart", deps.Uploads.InitMultipart)
	api.PATCH("/uploads/multipart", deps.Uploads.CompleteMultipart)
	api.DELETE("/uploads/multipart", deps.Uploads.AbortMultipart)
	api.POST("/uploads/direct", deps.Uploads.UploadDirect)

	api.GET("/geocode/reverse", deps.Geocode.ReverseGeocode)

	return r
}

func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "urban-pulse",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "urban-pulse"})
	}
}
