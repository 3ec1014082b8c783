package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/domain/service"
	"urban-pulse/internal/metrics"
	"urban-pulse/internal/platform/obs"
)

// ReportService 市民レポートに関するビジネスロジックを提供するサービス
// 全ての操作は認証済みユーザーを明示的に受け取る
type ReportService interface {
	CreateReport(ctx context.Context, user *model.CurrentUser, req *model.ReportInput) (*model.Report, error)
	// ListReports 緊急度の降順、作成日時の降順で全件を取得
	ListReports(ctx context.Context, user *model.CurrentUser) ([]model.Report, error)
	ListReportsPage(ctx context.Context, user *model.CurrentUser, page, pageSize int) ([]model.Report, error)
	GetReport(ctx context.Context, user *model.CurrentUser, id string) (*model.Report, error)
	UpdateReport(ctx context.Context, user *model.CurrentUser, id string, req *model.ReportInput) (*model.Report, error)
	DeleteReport(ctx context.Context, user *model.CurrentUser, id string) error
	ListUserReports(ctx context.Context, user *model.CurrentUser, userID string) ([]model.Report, error)
	// ListReportsInBounds 地図の表示範囲内のレポートを取得
	ListReportsInBounds(ctx context.Context, user *model.CurrentUser, bbox model.BoundingBox) ([]model.Report, error)

	// Vote 投票を登録・更新し、再計算した平均評価を返す
	Vote(ctx context.Context, user *model.CurrentUser, reportID string, value int) (float64, error)
	// GetRating レポートの平均評価（存在しなければ0）
	GetRating(ctx context.Context, user *model.CurrentUser, reportID string) (float64, error)

	ReportCoordinates(ctx context.Context, user *model.CurrentUser) ([]model.GeoPoint, error)
	// NearbyClusters 座標のスナップショットを近接クラスタにまとめる
	NearbyClusters(ctx context.Context, user *model.CurrentUser, thresholdMeters float64, minGroupSize int) ([]model.Cluster, error)
}

// reportServiceImpl ReportServiceの実装
type reportServiceImpl struct {
	reportsRepo repository.ReportsRepository
	metrics     *metrics.Metrics
}

// NewReportService ReportServiceの新しいインスタンスを作成
func NewReportService(reportsRepo repository.ReportsRepository, m *metrics.Metrics) ReportService {
	return &reportServiceImpl{
		reportsRepo: reportsRepo,
		metrics:     m,
	}
}

func requireUser(user *model.CurrentUser) error {
	if user == nil || user.ID == "" {
		return model.ErrUnauthorized
	}
	return nil
}

// CreateReport レポートを作成
func (s *reportServiceImpl) CreateReport(ctx context.Context, user *model.CurrentUser, req *model.ReportInput) (*model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if err := validateReportInput(req); err != nil {
		return nil, fmt.Errorf("リクエストの検証失敗: %w", err)
	}

	report := &model.Report{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Title:   strings.TrimSpace(req.Title),
		Desc:    req.Desc,
		Lat:     *req.Lat,
		Lon:     *req.Lon,
		Path:    req.Path,
		Urgency: req.Urgency,
	}

	if err := s.reportsRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("レポートの保存失敗: %w", err)
	}
	s.metrics.ReportCreated()

	log.Printf("✅ Report created: %s (urgency=%s, user=%s)", report.ID, report.Urgency, user.ID)
	return report, nil
}

func (s *reportServiceImpl) ListReports(ctx context.Context, user *model.CurrentUser) ([]model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	reports, err := s.reportsRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("レポート一覧の取得失敗: %w", err)
	}
	return reports, nil
}

// ListReportsPage 作成日時の降順でページ単位に取得（page は1始まり）
func (s *reportServiceImpl) ListReportsPage(ctx context.Context, user *model.CurrentUser, page, pageSize int) ([]model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, &model.ValidationError{Field: "page", Message: "1以上を指定してください"}
	}
	if pageSize < 1 || pageSize > model.MaxPageSize {
		return nil, &model.ValidationError{Field: "page_size", Message: fmt.Sprintf("1から%dの範囲で指定してください", model.MaxPageSize)}
	}
	// offset+pageSize が int に収まる範囲に制限する
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return nil, &model.ValidationError{Field: "page", Message: "pageが大きすぎます"}
	}

	reports, err := s.reportsRepo.GetPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("レポートページの取得失敗: %w", err)
	}
	return reports, nil
}

func (s *reportServiceImpl) GetReport(ctx context.Context, user *model.CurrentUser, id string) (*model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	report, err := s.reportsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// UpdateReport 所有者のレポートのみ更新する
func (s *reportServiceImpl) UpdateReport(ctx context.Context, user *model.CurrentUser, id string, req *model.ReportInput) (*model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if err := validateReportInput(req); err != nil {
		return nil, fmt.Errorf("リクエストの検証失敗: %w", err)
	}

	updated, err := s.reportsRepo.Update(ctx, &model.Report{
		ID:      id,
		UserID:  user.ID,
		Title:   strings.TrimSpace(req.Title),
		Desc:    req.Desc,
		Lat:     *req.Lat,
		Lon:     *req.Lon,
		Path:    req.Path,
		Urgency: req.Urgency,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Report updated: %s", id)
	return updated, nil
}

// DeleteReport 所有者のレポートのみ削除する
func (s *reportServiceImpl) DeleteReport(ctx context.Context, user *model.CurrentUser, id string) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := s.reportsRepo.Delete(ctx, id, user.ID); err != nil {
		return err
	}
	log.Printf("✅ Report deleted: %s", id)
	return nil
}

func (s *reportServiceImpl) ListUserReports(ctx context.Context, user *model.CurrentUser, userID string) ([]model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	reports, err := s.reportsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーのレポート取得失敗: %w", err)
	}
	return reports, nil
}

func (s *reportServiceImpl) ListReportsInBounds(ctx context.Context, user *model.CurrentUser, bbox model.BoundingBox) ([]model.Report, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if err := validateBoundingBox(bbox); err != nil {
		return nil, fmt.Errorf("境界ボックスの検証失敗: %w", err)
	}

	reports, err := s.reportsRepo.GetByBoundingBox(ctx, bbox)
	if err != nil {
		return nil, fmt.Errorf("境界ボックス内のレポート取得失敗: %w", err)
	}
	return reports, nil
}

func (s *reportServiceImpl) Vote(ctx context.Context, user *model.CurrentUser, reportID string, value int) (float64, error) {
	if err := requireUser(user); err != nil {
		return 0, err
	}
	if value < model.MinVoteValue || value > model.MaxVoteValue {
		return 0, fmt.Errorf("投票値 %d: %w", value, model.ErrInvalidVote)
	}

	rating, err := s.reportsRepo.UpsertVote(ctx, &model.Vote{
		UserID:   user.ID,
		ReportID: reportID,
		Value:    value,
	})
	if err != nil {
		return 0, err
	}

	log.Printf("✅ Vote recorded: report=%s value=%d rating=%.2f", reportID, value, rating)
	return rating, nil
}

func (s *reportServiceImpl) GetRating(ctx context.Context, user *model.CurrentUser, reportID string) (float64, error) {
	if err := requireUser(user); err != nil {
		return 0, err
	}
	report, err := s.reportsRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, model.ErrReportNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("評価の取得失敗: %w", err)
	}
	return report.Rating, nil
}

func (s *reportServiceImpl) ReportCoordinates(ctx context.Context, user *model.CurrentUser) ([]model.GeoPoint, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	points, err := s.reportsRepo.GetCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("座標の取得失敗: %w", err)
	}
	return points, nil
}

func (s *reportServiceImpl) NearbyClusters(ctx context.Context, user *model.CurrentUser, thresholdMeters float64, minGroupSize int) (clusters []model.Cluster, err error) {
	defer obs.Time(ctx, "reports.nearby_clusters")(&err)

	if err := requireUser(user); err != nil {
		return nil, err
	}
	clusterer, err := service.NewProximityClusterer(thresholdMeters, minGroupSize)
	if err != nil {
		return nil, err
	}

	points, err := s.reportsRepo.GetCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("座標の取得失敗: %w", err)
	}

	clusters = clusterer.Cluster(points)
	s.metrics.ObserveClusters(len(clusters))

	log.Printf("✅ %d reports grouped into %d clusters (threshold=%.0fm, min=%d)", len(points), len(clusters), thresholdMeters, minGroupSize)
	return clusters, nil
}

// validateReportInput 作成・更新リクエストの入力チェック
func validateReportInput(req *model.ReportInput) error {
	if req == nil {
		return &model.ValidationError{Field: "body", Message: "リクエストが空です"}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return &model.ValidationError{Field: "title", Message: "タイトルは必須です"}
	}
	if utf8.RuneCountInString(title) > model.MaxReportTitleLength {
		return &model.ValidationError{Field: "title", Message: fmt.Sprintf("タイトルは%d文字以内で入力してください", model.MaxReportTitleLength)}
	}
	if req.Lat == nil || req.Lon == nil {
		return &model.ValidationError{Field: "lat/lon", Message: "位置情報は必須です"}
	}
	if !model.ValidLatLon(*req.Lat, *req.Lon) {
		return &model.ValidationError{Field: "lat/lon", Message: "緯度は-90〜90、経度は-180〜180の範囲で指定してください"}
	}
	if !req.Urgency.Valid() {
		return &model.ValidationError{Field: "urgency", Message: "LOW, MEDIUM, HIGH のいずれかを指定してください"}
	}
	return nil
}

// validateBoundingBox 境界ボックスの範囲チェック
func validateBoundingBox(bbox model.BoundingBox) error {
	if !model.ValidLatLon(bbox.MinLat, bbox.MinLon) || !model.ValidLatLon(bbox.MaxLat, bbox.MaxLon) {
		return &model.ValidationError{Field: "bbox", Message: "座標値が有効範囲外です"}
	}
	if bbox.MinLon >= bbox.MaxLon || bbox.MinLat >= bbox.MaxLat {
		return &model.ValidationError{Field: "bbox", Message: "min値がmax値以上です"}
	}
	return nil
}
