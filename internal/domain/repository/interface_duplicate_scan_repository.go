package repository

import (
	"context"

	"urban-pulse/internal/domain/model"
)

// DuplicateScanRepository は重複スキャン結果をTTL付きで保存する
type DuplicateScanRepository interface {
	Save(ctx context.Context, scan *model.DuplicateScan) error
	// Get は該当がなければ model.ErrScanNotFound を返す
	Get(ctx context.Context, scanID string) (*model.DuplicateScan, error)
}
