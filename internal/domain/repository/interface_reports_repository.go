package repository

import (
	"context"

	"urban-pulse/internal/domain/model"
)

// ReportsRepository はレポートと投票の永続化を担うリポジトリインターフェース
type ReportsRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// GetAll は緊急度の降順、作成日時の降順で全件を返す
	GetAll(ctx context.Context) ([]model.Report, error)
	GetPage(ctx context.Context, offset, limit int) ([]model.Report, error)
	GetByUserID(ctx context.Context, userID string) ([]model.Report, error)
	GetByBoundingBox(ctx context.Context, bbox model.BoundingBox) ([]model.Report, error)
	// Update と Delete は所有者のレポートのみ対象とし、該当がなければ model.ErrReportNotFound を返す
	Update(ctx context.Context, report *model.Report) (*model.Report, error)
	Delete(ctx context.Context, id, userID string) error
	GetCoordinates(ctx context.Context) ([]model.GeoPoint, error)
	GetTexts(ctx context.Context, ids []string) ([]model.ReportText, error)

	// UpsertVote はユーザーの投票を登録または更新し、レポートの平均評価を再計算して返す
	UpsertVote(ctx context.Context, vote *model.Vote) (float64, error)
}
