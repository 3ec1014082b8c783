package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/infrastructure/database"
)

const reportColumns = `id, user_id, title, "desc", lat, lon, path, urgency, rating, created_at, updated_at`

// foreign_key_violation
const pqForeignKeyViolation = "23503"

type PostgresReportsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresReportsRepository(client *database.PostgreSQLClient) repository.ReportsRepository {
	return &PostgresReportsRepository{
		client: client,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReport は reportColumns の順序で1行を読み取る
func scanReport(row rowScanner) (*model.Report, error) {
	var (
		report  model.Report
		path    sql.NullString
		urgency string
	)
	err := row.Scan(&report.ID, &report.UserID, &report.Title, &report.Desc, &report.Lat, &report.Lon,
		&path, &urgency, &report.Rating, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return nil, err
	}
	report.Path = path.String
	report.Urgency = model.Urgency(urgency)
	return &report, nil
}

func (r *PostgresReportsRepository) queryReports(ctx context.Context, query string, args ...interface{}) ([]model.Report, error) {
	rows, err := r.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("レポートの取得失敗: %w", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("レポートデータスキャンエラー: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レポート行の読み取りエラー: %w", err)
	}
	return reports, nil
}

func nullablePath(path string) sql.NullString {
	return sql.NullString{String: path, Valid: path != ""}
}

func (r *PostgresReportsRepository) Create(ctx context.Context, report *model.Report) error {
	query := `INSERT INTO reports (id, user_id, title, "desc", lat, lon, path, urgency, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.client.DB.QueryRowContext(ctx, query,
		report.ID, report.UserID, report.Title, report.Desc, report.Lat, report.Lon,
		nullablePath(report.Path), string(report.Urgency), report.Rating,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("レポートの作成失敗: %w", err)
	}
	return nil
}

func (r *PostgresReportsRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.client.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("レポートID %s: %w", id, model.ErrReportNotFound)
		}
		return nil, fmt.Errorf("レポートの取得失敗: %w", err)
	}
	return report, nil
}

func (r *PostgresReportsRepository) GetAll(ctx context.Context) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
		ORDER BY CASE urgency WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC, created_at DESC`
	return r.queryReports(ctx, query)
}

func (r *PostgresReportsRepository) GetPage(ctx context.Context, offset, limit int) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	return r.queryReports(ctx, query, offset, limit)
}

func (r *PostgresReportsRepository) GetByUserID(ctx context.Context, userID string) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryReports(ctx, query, userID)
}

func (r *PostgresReportsRepository) GetByBoundingBox(ctx context.Context, bbox model.BoundingBox) ([]model.Report, error) {
	// PostGIS で境界ボックスとの交差を判定
	query := `SELECT ` + reportColumns + ` FROM reports
		WHERE ST_Intersects(ST_SetSRID(ST_MakePoint(lon, lat), 4326), ST_GeomFromText($1, 4326))
		ORDER BY created_at DESC`
	return r.queryReports(ctx, query, BoundingBoxToWKT(bbox))
}

func (r *PostgresReportsRepository) Update(ctx context.Context, report *model.Report) (*model.Report, error) {
	query := `UPDATE reports
		SET title = $3, "desc" = $4, lat = $5, lon = $6, path = $7, urgency = $8, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + reportColumns

	updated, err := scanReport(r.client.DB.QueryRowContext(ctx, query,
		report.ID, report.UserID, report.Title, report.Desc, report.Lat, report.Lon,
		nullablePath(report.Path), string(report.Urgency),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("レポートID %s: %w", report.ID, model.ErrReportNotFound)
		}
		return nil, fmt.Errorf("レポートの更新失敗: %w", err)
	}
	return updated, nil
}

func (r *PostgresReportsRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.client.DB.ExecContext(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("レポートの削除失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得失敗: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("レポートID %s: %w", id, model.ErrReportNotFound)
	}
	return nil
}

func (r *PostgresReportsRepository) GetCoordinates(ctx context.Context) ([]model.GeoPoint, error) {
	rows, err := r.client.DB.QueryContext(ctx, `SELECT id, lat, lon FROM reports`)
	if err != nil {
		return nil, fmt.Errorf("座標の取得失敗: %w", err)
	}
	defer rows.Close()

	points := []model.GeoPoint{}
	for rows.Next() {
		var p model.GeoPoint
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("座標データスキャンエラー: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *PostgresReportsRepository) GetTexts(ctx context.Context, ids []string) ([]model.ReportText, error) {
	rows, err := r.client.DB.QueryContext(ctx, `SELECT id, title, "desc" FROM reports WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("レポート本文の取得失敗: %w", err)
	}
	defer rows.Close()

	texts := []model.ReportText{}
	for rows.Next() {
		var t model.ReportText
		if err := rows.Scan(&t.ID, &t.Title, &t.Desc); err != nil {
			return nil, fmt.Errorf("レポート本文スキャンエラー: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

func (r *PostgresReportsRepository) UpsertVote(ctx context.Context, vote *model.Vote) (rating float64, err error) {
	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始失敗: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO votes (user_id, report_id, vote_value) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, report_id) DO UPDATE SET vote_value = EXCLUDED.vote_value`,
		vote.UserID, vote.ReportID, vote.Value)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return 0, fmt.Errorf("レポートID %s: %w", vote.ReportID, model.ErrReportNotFound)
		}
		return 0, fmt.Errorf("投票の保存失敗: %w", err)
	}

	err = tx.QueryRowContext(ctx, `UPDATE reports
		SET rating = (SELECT COALESCE(AVG(vote_value), 0) FROM votes WHERE report_id = $1)
		WHERE id = $1
		RETURNING rating`, vote.ReportID).Scan(&rating)
	if err != nil {
		return 0, fmt.Errorf("評価の再計算失敗: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミット失敗: %w", err)
	}
	return rating, nil
}
