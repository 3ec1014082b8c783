package repository

import (
	"context"
	"io"
	"time"

	"urban-pulse/internal/domain/model"
)

// ImageStorageRepository はレポート画像のオブジェクトストレージを抽象化する
type ImageStorageRepository interface {
	// CreateMultipartUpload はアップロードを開始し、アップロードIDを返す
	CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error)
	PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32, expires time.Duration) (string, error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []model.CompletedPart) error
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
	// PutObject はサーバー側で画像を直接アップロードする
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
}
