package repository

import "context"

// GeocodingRepository は座標から地名を取得する
type GeocodingRepository interface {
	LocationName(ctx context.Context, lat, lon float64) (string, error)
}
