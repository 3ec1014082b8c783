package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

// MinioImageStorage はMinIOなどS3互換ストレージを使った画像ストレージ
type MinioImageStorage struct {
	core     *minio.Core
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinioImageStorage は新しいMinioImageStorageを作成
// regionを指定するとバケット位置の問い合わせを省略できる
func NewMinioImageStorage(endpoint, accessKey, secretKey, region, bucket string, useSSL bool) (repository.ImageStorageRepository, error) {
	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINTとS3_BUCKET_NAMEは必須です")
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIOクライアントの初期化に失敗: %w", err)
	}

	return &MinioImageStorage{
		core:     core,
		bucket:   bucket,
		endpoint: endpoint,
		useSSL:   useSSL,
	}, nil
}

func (s *MinioImageStorage) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	uploadID, err := s.core.NewMultipartUpload(ctx, s.bucket, key, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("マルチパートアップロードの作成に失敗: %w", err)
	}
	if uploadID == "" {
		return "", fmt.Errorf("アップロードIDが返されませんでした: %s", key)
	}
	return uploadID, nil
}

func (s *MinioImageStorage) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32, expires time.Duration) (string, error) {
	params := url.Values{}
	params.Set("partNumber", strconv.Itoa(int(partNumber)))
	params.Set("uploadId", uploadID)

	u, err := s.core.Presign(ctx, http.MethodPut, s.bucket, key, expires, params)
	if err != nil {
		return "", fmt.Errorf("パート%dの署名付きURL生成に失敗: %w", partNumber, err)
	}
	return u.String(), nil
}

func (s *MinioImageStorage) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []model.CompletedPart) error {
	completed := make([]minio.CompletePart, len(parts))
	for i, p := range parts {
		completed[i] = minio.CompletePart{PartNumber: int(p.PartNumber), ETag: p.ETag}
	}

	if _, err := s.core.CompleteMultipartUpload(ctx, s.bucket, key, uploadID, completed, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("マルチパートアップロードの完了に失敗: %w", err)
	}
	return nil
}

func (s *MinioImageStorage) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	if err := s.core.AbortMultipartUpload(ctx, s.bucket, key, uploadID); err != nil {
		return fmt.Errorf("マルチパートアップロードの中止に失敗: %w", err)
	}
	return nil
}

func (s *MinioImageStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if _, err := s.core.Client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		errResp := minio.ToErrorResponse(err)
		return fmt.Errorf("画像のアップロードに失敗 (code=%s): %w", errResp.Code, err)
	}
	return nil
}

func (s *MinioImageStorage) PublicURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}
