package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

// S3ImageStorage はAWS S3を使った画像ストレージ
type S3ImageStorage struct {
	client   *s3.Client
	presign  *s3.PresignClient
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewS3ImageStorage はデフォルトの認証情報チェーンでS3クライアントを作成する
func NewS3ImageStorage(ctx context.Context, region, bucket string) (repository.ImageStorageRepository, error) {
	if region == "" || bucket == "" {
		return nil, fmt.Errorf("AWS_REGIONとS3_BUCKET_NAMEは必須です")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗: %w", err)
	}

	return NewS3ImageStorageFromConfig(cfg, bucket), nil
}

// NewS3ImageStorageFromConfig は既存のaws.Configからストレージを作成する
func NewS3ImageStorageFromConfig(cfg aws.Config, bucket string) *S3ImageStorage {
	client := s3.NewFromConfig(cfg)
	return &S3ImageStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = model.DefaultUploadPartSize
		}),
		bucket: bucket,
		region: cfg.Region,
	}
}

func (s *S3ImageStorage) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	out, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("マルチパートアップロードの作成に失敗: %w", err)
	}
	if out.UploadId == nil || *out.UploadId == "" {
		return "", fmt.Errorf("アップロードIDが返されませんでした: %s", key)
	}
	return *out.UploadId, nil
}

func (s *S3ImageStorage) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32, expires time.Duration) (string, error) {
	req, err := s.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(key),
		PartNumber: aws.Int32(partNumber),
		UploadId:   aws.String(uploadID),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("パート%dの署名付きURL生成に失敗: %w", partNumber, err)
	}
	return req.URL, nil
}

func (s *S3ImageStorage) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []model.CompletedPart) error {
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		}
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("マルチパートアップロードの完了に失敗: %w", err)
	}
	return nil
}

func (s *S3ImageStorage) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("マルチパートアップロードの中止に失敗: %w", err)
	}
	return nil
}

// PutObject はアップロードマネージャ経由で送信する（大きなファイルは自動でマルチパートになる）
func (s *S3ImageStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("画像のアップロードに失敗 (%d bytes): %w", size, err)
	}
	return nil
}

func (s *S3ImageStorage) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
