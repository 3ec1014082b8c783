package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

// 署名付きURLの有効期限
const presignExpiry = time.Hour

type UploadUseCase interface {
	// InitMultipartUpload はアップロードを開始し、パートごとの署名付きURLを返す
	InitMultipartUpload(ctx context.Context, req *model.InitMultipartUploadRequest) (*model.MultipartUpload, error)
	CompleteMultipartUpload(ctx context.Context, req *model.CompleteMultipartUploadRequest) (*model.UploadedImage, error)
	AbortMultipartUpload(ctx context.Context, req *model.AbortMultipartUploadRequest) error
	// UploadImage はサーバー経由で画像を直接アップロードする
	UploadImage(ctx context.Context, fileName, contentType string, body io.Reader, size int64) (*model.UploadedImage, error)
}

type uploadUseCaseImpl struct {
	storage repository.ImageStorageRepository
	now     func() time.Time
}

func NewUploadUseCase(storage repository.ImageStorageRepository) UploadUseCase {
	return &uploadUseCaseImpl{
		storage: storage,
		now:     time.Now,
	}
}

// objectKey は uploads/<unixミリ秒>-<ファイル名> 形式のキーを作る
func (u *uploadUseCaseImpl) objectKey(fileName string) string {
	return fmt.Sprintf("%s%d-%s", model.UploadKeyPrefix, u.now().UnixMilli(), path.Base(fileName))
}

func (u *uploadUseCaseImpl) InitMultipartUpload(ctx context.Context, req *model.InitMultipartUploadRequest) (*model.MultipartUpload, error) {
	if req.FileName == "" || req.FileType == "" || req.FileSize <= 0 {
		return nil, &model.ValidationError{Field: "fileName/fileType/fileSize", Message: "fileName, fileType and fileSize required"}
	}

	if req.PartSize < 0 {
		return nil, &model.ValidationError{Field: "partSize", Message: "partSizeは正の値で指定してください"}
	}
	partSize := req.PartSize
	if partSize == 0 {
		partSize = model.DefaultUploadPartSize
	}
	// 割り算の後に切り上げるので巨大なfileSizeでもオーバーフローしない
	partsCount := req.FileSize / partSize
	if req.FileSize%partSize != 0 {
		partsCount++
	}
	if partsCount < 1 || partsCount > model.MaxUploadParts {
		return nil, &model.ValidationError{Field: "partSize", Message: fmt.Sprintf("パート数が上限(%d)を超えます: %d", model.MaxUploadParts, partsCount)}
	}

	key := u.objectKey(req.FileName)
	uploadID, err := u.storage.CreateMultipartUpload(ctx, key, req.FileType)
	if err != nil {
		return nil, err
	}

	parts := make([]model.PresignedPart, 0, partsCount)
	for i := int32(1); i <= int32(partsCount); i++ {
		uploadURL, err := u.storage.PresignUploadPart(ctx, key, uploadID, i, presignExpiry)
		if err != nil {
			// 署名に失敗したら開始済みのアップロードを片付ける
			if abortErr := u.storage.AbortMultipartUpload(ctx, key, uploadID); abortErr != nil {
				log.Printf("⚠️ Failed to abort upload %s: %v", uploadID, abortErr)
			}
			return nil, err
		}
		parts = append(parts, model.PresignedPart{PartNumber: i, UploadURL: uploadURL})
	}

	log.Printf("✅ Multipart upload initialized: %s (%d parts, partSize=%d)", key, partsCount, partSize)
	return &model.MultipartUpload{
		UploadID: uploadID,
		Key:      key,
		Parts:    parts,
		FileURL:  u.storage.PublicURL(key),
	}, nil
}

func (u *uploadUseCaseImpl) CompleteMultipartUpload(ctx context.Context, req *model.CompleteMultipartUploadRequest) (*model.UploadedImage, error) {
	if req.UploadID == "" || req.Key == "" || len(req.Parts) == 0 {
		return nil, &model.ValidationError{Field: "uploadId/key/parts", Message: "uploadId, key and parts required"}
	}

	parts := make([]model.CompletedPart, len(req.Parts))
	for i, p := range req.Parts {
		parts[i] = model.CompletedPart{
			ETag:       strings.Trim(p.ETag, `"'`),
			PartNumber: p.PartNumber,
		}
	}

	if err := u.storage.CompleteMultipartUpload(ctx, req.Key, req.UploadID, parts); err != nil {
		return nil, err
	}

	log.Printf("✅ Multipart upload completed: %s", req.Key)
	return &model.UploadedImage{Key: req.Key, FileURL: u.storage.PublicURL(req.Key)}, nil
}

func (u *uploadUseCaseImpl) AbortMultipartUpload(ctx context.Context, req *model.AbortMultipartUploadRequest) error {
	if req.UploadID == "" || req.Key == "" {
		return &model.ValidationError{Field: "uploadId/key", Message: "uploadId and key required"}
	}
	if err := u.storage.AbortMultipartUpload(ctx, req.Key, req.UploadID); err != nil {
		return err
	}
	log.Printf("✅ Multipart upload aborted: %s", req.Key)
	return nil
}

func (u *uploadUseCaseImpl) UploadImage(ctx context.Context, fileName, contentType string, body io.Reader, size int64) (*model.UploadedImage, error) {
	if fileName == "" || body == nil {
		return nil, &model.ValidationError{Field: "file", Message: "ファイルは必須です"}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := u.objectKey(fileName)
	if err := u.storage.PutObject(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}

	log.Printf("✅ Image uploaded: %s (%d bytes)", key, size)
	return &model.UploadedImage{Key: key, FileURL: u.storage.PublicURL(key)}, nil
}
