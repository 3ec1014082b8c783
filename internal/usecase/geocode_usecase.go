package usecase

import (
	"context"
	"fmt"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

type GeocodeUseCase interface {
	// LocationName は座標に最も近い地名を返す
	LocationName(ctx context.Context, lat, lon float64) (string, error)
}

type geocodeUseCaseImpl struct {
	geocoder repository.GeocodingRepository
}

// NewGeocodeUseCase geocoder が nil の場合は model.ErrNotConfigured を返す
func NewGeocodeUseCase(geocoder repository.GeocodingRepository) GeocodeUseCase {
	return &geocodeUseCaseImpl{geocoder: geocoder}
}

func (u *geocodeUseCaseImpl) LocationName(ctx context.Context, lat, lon float64) (string, error) {
	if !model.ValidLatLon(lat, lon) {
		return "", &model.ValidationError{Field: "lat/lon", Message: "緯度は-90〜90、経度は-180〜180の範囲で指定してください"}
	}
	if u.geocoder == nil {
		return "", fmt.Errorf("逆ジオコーディング: %w", model.ErrNotConfigured)
	}
	name, err := u.geocoder.LocationName(ctx, lat, lon)
	if err != nil {
		return "", fmt.Errorf("地名の取得失敗: %w", err)
	}
	return name, nil
}
