package repository

import (
	"context"

	"urban-pulse/internal/domain/model"
)

// DescriptionGenerationRepository は画像から問題の説明文を生成する責務を持つ
type DescriptionGenerationRepository interface {
	GenerateDescription(ctx context.Context, imageURL string) (string, error)
}

// ReportComparisonRepository は2件のレポートが同じ問題かをモデルに問い合わせる
// 戻り値はモデルの生の応答で、スコアの解釈は呼び出し側が行う
type ReportComparisonRepository interface {
	CompareReports(ctx context.Context, a, b model.ReportText) (string, error)
}
