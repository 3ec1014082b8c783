package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

const duplicateScansCollection = "duplicateScans"

// FirestoreDuplicateScanRepository Firestoreを使用した重複スキャン結果のキャッシュリポジトリ
type FirestoreDuplicateScanRepository struct {
	client   *firestore.Client
	ttlHours int
	now      func() time.Time
}

// NewFirestoreDuplicateScanRepository 新しいFirestoreDuplicateScanRepositoryインスタンスを作成
func NewFirestoreDuplicateScanRepository(client *firestore.Client, ttlHours int) repository.DuplicateScanRepository {
	if ttlHours <= 0 {
		ttlHours = model.DefaultDuplicateTTLHours
	}
	return &FirestoreDuplicateScanRepository{
		client:   client,
		ttlHours: ttlHours,
		now:      time.Now,
	}
}

// Save はスキャン結果をexpireAt付きで保存し、保存した有効期限を scan.ExpiresAt に反映する
// 削除はFirestoreのTTLポリシーに任せる
func (r *FirestoreDuplicateScanRepository) Save(ctx context.Context, scan *model.DuplicateScan) error {
	data := scan.ToFirestoreDuplicateScan(r.ttlHours)

	if _, err := r.client.Collection(duplicateScansCollection).Doc(scan.ID).Set(ctx, data); err != nil {
		log.Printf("❌ Failed to save duplicate scan %s: %v", scan.ID, err)
		return fmt.Errorf("重複スキャンの保存に失敗しました: %w", err)
	}
	scan.ExpiresAt = data.ExpireAt

	log.Printf("✅ Duplicate scan saved: %s (%d clusters, expires in %d hours)", scan.ID, len(scan.Clusters), r.ttlHours)
	return nil
}

// Get は保存済みのスキャン結果を返す。TTLによる削除は遅れることがあるため期限切れも未検出として扱う
func (r *FirestoreDuplicateScanRepository) Get(ctx context.Context, scanID string) (*model.DuplicateScan, error) {
	doc, err := r.client.Collection(duplicateScansCollection).Doc(scanID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("スキャンID %s: %w", scanID, model.ErrScanNotFound)
		}
		return nil, fmt.Errorf("重複スキャンの取得に失敗しました: %w", err)
	}

	var data model.FirestoreDuplicateScan
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	if data.Expired(r.now()) {
		return nil, fmt.Errorf("スキャンID %s（有効期限切れ）: %w", scanID, model.ErrScanNotFound)
	}

	return data.ToDuplicateScan(scanID), nil
}
