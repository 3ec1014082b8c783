package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/supabase-community/postgrest-go"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/infrastructure/database"
)

const (
	reportsTable = "reports"
	votesTable   = "votes"
)

// reportRow Supabaseへの書き込み用（created_at/updated_at はDBのデフォルト値に任せる）
type reportRow struct {
	ID      string  `json:"id"`
	UserID  string  `json:"user_id"`
	Title   string  `json:"title"`
	Desc    string  `json:"desc"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Path    *string `json:"path"`
	Urgency string  `json:"urgency"`
	Rating  float64 `json:"rating"`
}

func reportToRow(report *model.Report) reportRow {
	row := reportRow{
		ID:      report.ID,
		UserID:  report.UserID,
		Title:   report.Title,
		Desc:    report.Desc,
		Lat:     report.Lat,
		Lon:     report.Lon,
		Urgency: string(report.Urgency),
		Rating:  report.Rating,
	}
	if report.Path != "" {
		row.Path = &report.Path
	}
	return row
}

type SupabaseReportsRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseReportsRepository(client *database.SupabaseClient) repository.ReportsRepository {
	return &SupabaseReportsRepository{
		client: client,
	}
}

func (r *SupabaseReportsRepository) from(table string) *postgrest.QueryBuilder {
	return r.client.GetClient().From(table)
}

func decodeReports(data []byte) ([]model.Report, error) {
	reports := []model.Report{}
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("レポートデータのJSONアンマーシャル失敗: %w", err)
	}
	return reports, nil
}

func (r *SupabaseReportsRepository) Create(ctx context.Context, report *model.Report) error {
	data, _, err := r.from(reportsTable).Insert(reportToRow(report), false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("レポートの作成失敗: %w", err)
	}

	created, err := decodeReports(data)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		report.CreatedAt = created[0].CreatedAt
		report.UpdatedAt = created[0].UpdatedAt
	}
	return nil
}

func (r *SupabaseReportsRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	data, _, err := r.from(reportsTable).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("レポートの取得失敗: %w", err)
	}

	reports, err := decodeReports(data)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("レポートID %s: %w", id, model.ErrReportNotFound)
	}
	return &reports[0], nil
}

// GetAll PostgRESTでは式による並び替えができないため、取得後に緊急度順へ並べ替える
func (r *SupabaseReportsRepository) GetAll(ctx context.Context) ([]model.Report, error) {
	data, _, err := r.from(reportsTable).Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("レポート一覧の取得失敗: %w", err)
	}

	reports, err := decodeReports(data)
	if err != nil {
		return nil, err
	}
	SortByUrgency(reports)
	return reports, nil
}

func (r *SupabaseReportsRepository) GetPage(ctx context.Context, offset, limit int) ([]model.Report, error) {
	if limit <= 0 {
		return []model.Report{}, nil
	}
	data, _, err := r.from(reportsTable).Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("レポートページの取得失敗: %w", err)
	}
	return decodeReports(data)
}

func (r *SupabaseReportsRepository) GetByUserID(ctx context.Context, userID string) ([]model.Report, error) {
	data, _, err := r.from(reportsTable).Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ユーザーのレポート取得失敗: %w", err)
	}
	return decodeReports(data)
}

func (r *SupabaseReportsRepository) GetByBoundingBox(ctx context.Context, bbox model.BoundingBox) ([]model.Report, error) {
	data, _, err := r.from(reportsTable).Select("*", "", false).
		Gte("lon", formatFloat(bbox.MinLon)).
		Lte("lon", formatFloat(bbox.MaxLon)).
		Gte("lat", formatFloat(bbox.MinLat)).
		Lte("lat", formatFloat(bbox.MaxLat)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("境界ボックス検索エラー: %w", err)
	}

	reports, err := decodeReports(data)
	if err != nil {
		return nil, err
	}

	// 文字列比較の丸め誤差を避けるため orb で最終判定
	filtered := reports[:0]
	for i := range reports {
		if ReportInBound(&reports[i], bbox) {
			filtered = append(filtered, reports[i])
		}
	}
	return filtered, nil
}

func (r *SupabaseReportsRepository) Update(ctx context.Context, report *model.Report) (*model.Report, error) {
	values := map[string]interface{}{
		"title":      report.Title,
		"desc":       report.Desc,
		"lat":        report.Lat,
		"lon":        report.Lon,
		"path":       reportToRow(report).Path,
		"urgency":    string(report.Urgency),
		"updated_at": time.Now().UTC(),
	}

	data, _, err := r.from(reportsTable).Update(values, "representation", "").
		Eq("id", report.ID).
		Eq("user_id", report.UserID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("レポートの更新失敗: %w", err)
	}

	updated, err := decodeReports(data)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("レポートID %s: %w", report.ID, model.ErrReportNotFound)
	}
	return &updated[0], nil
}

func (r *SupabaseReportsRepository) Delete(ctx context.Context, id, userID string) error {
	data, _, err := r.from(reportsTable).Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("レポートの削除失敗: %w", err)
	}

	deleted, err := decodeReports(data)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return fmt.Errorf("レポートID %s: %w", id, model.ErrReportNotFound)
	}
	return nil
}

func (r *SupabaseReportsRepository) GetCoordinates(ctx context.Context) ([]model.GeoPoint, error) {
	data, _, err := r.from(reportsTable).Select("id,lat,lon", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("座標の取得失敗: %w", err)
	}

	var rows []struct {
		ID  string  `json:"id"`
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("座標データのJSONアンマーシャル失敗: %w", err)
	}

	points := make([]model.GeoPoint, len(rows))
	for i, row := range rows {
		points[i] = model.GeoPoint{ID: row.ID, Lat: row.Lat, Lon: row.Lon}
	}
	return points, nil
}

func (r *SupabaseReportsRepository) GetTexts(ctx context.Context, ids []string) ([]model.ReportText, error) {
	if len(ids) == 0 {
		return []model.ReportText{}, nil
	}

	data, _, err := r.from(reportsTable).Select("id,title,desc", "", false).In("id", ids).Execute()
	if err != nil {
		return nil, fmt.Errorf("レポート本文の取得失敗: %w", err)
	}

	var rows []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Desc  string `json:"desc"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("レポート本文のJSONアンマーシャル失敗: %w", err)
	}

	texts := make([]model.ReportText, len(rows))
	for i, row := range rows {
		texts[i] = model.ReportText{ID: row.ID, Title: row.Title, Desc: row.Desc}
	}
	return texts, nil
}

// UpsertVote PostgRESTはトランザクションを張れないため、投票の保存後に平均を読み直して書き戻す
func (r *SupabaseReportsRepository) UpsertVote(ctx context.Context, vote *model.Vote) (float64, error) {
	if _, err := r.GetByID(ctx, vote.ReportID); err != nil {
		return 0, err
	}

	_, _, err := r.from(votesTable).Insert(vote, true, "user_id,report_id", "minimal", "").Execute()
	if err != nil {
		return 0, fmt.Errorf("投票の保存失敗: %w", err)
	}

	data, _, err := r.from(votesTable).Select("vote_value", "", false).Eq("report_id", vote.ReportID).Execute()
	if err != nil {
		return 0, fmt.Errorf("投票の取得失敗: %w", err)
	}

	var votes []struct {
		Value int `json:"vote_value"`
	}
	if err := json.Unmarshal(data, &votes); err != nil {
		return 0, fmt.Errorf("投票データのJSONアンマーシャル失敗: %w", err)
	}

	values := make([]int, len(votes))
	for i, v := range votes {
		values[i] = v.Value
	}
	rating := AverageVote(values)

	_, _, err = r.from(reportsTable).Update(map[string]interface{}{"rating": rating}, "minimal", "").
		Eq("id", vote.ReportID).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("評価の更新失敗: %w", err)
	}
	return rating, nil
}

// SortByUrgency 緊急度の降順、同じ緊急度内では作成日時の降順に並べる
func SortByUrgency(reports []model.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		ri, rj := reports[i].Urgency.Rank(), reports[j].Urgency.Rank()
		if ri != rj {
			return ri > rj
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

// AverageVote 投票値の平均（投票なしは0）
func AverageVote(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
