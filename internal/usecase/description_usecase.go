package usecase

import (
	"context"
	"fmt"
	"strings"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

type DescriptionUseCase interface {
	// GenerateDescription はアップロード済み画像のキーから問題の説明文を生成する
	GenerateDescription(ctx context.Context, imagePath string) (string, error)
}

type descriptionUseCaseImpl struct {
	storage   repository.ImageStorageRepository
	generator repository.DescriptionGenerationRepository
}

// NewDescriptionUseCase generator が nil の場合は model.ErrNotConfigured を返す
func NewDescriptionUseCase(storage repository.ImageStorageRepository, generator repository.DescriptionGenerationRepository) DescriptionUseCase {
	return &descriptionUseCaseImpl{
		storage:   storage,
		generator: generator,
	}
}

func (u *descriptionUseCaseImpl) GenerateDescription(ctx context.Context, imagePath string) (string, error) {
	imagePath = strings.TrimSpace(imagePath)
	if imagePath == "" {
		return "", &model.ValidationError{Field: "imagePath", Message: "画像のパスは必須です"}
	}
	if u.generator == nil {
		return "", fmt.Errorf("説明文の生成モデル: %w", model.ErrNotConfigured)
	}

	// 完全なURLが渡された場合はそのまま使う
	imageURL := imagePath
	if !strings.HasPrefix(imagePath, "http://") && !strings.HasPrefix(imagePath, "https://") {
		imageURL = u.storage.PublicURL(imagePath)
	}

	content, err := u.generator.GenerateDescription(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("説明文の生成失敗: %w", err)
	}
	return content, nil
}
