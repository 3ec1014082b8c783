package helper

import (
	"math"

	"urban-pulse/internal/domain/model"
)

// HaversineMeters は2地点間の大圏距離を計算する (m)
// 地球半径は 6,371,000m 固定
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon
	return 2 * model.EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceBetween は2つのGeoPoint間の距離を計算する (m)
func DistanceBetween(a, b model.GeoPoint) float64 {
	return HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Centroid はメンバー緯度経度の算術平均を返す（測地的な重心ではない）
func Centroid(points []model.GeoPoint) model.Coordinate {
	if len(points) == 0 {
		return model.Coordinate{}
	}
	var latSum, lonSum float64
	for _, p := range points {
		latSum += p.Lat
		lonSum += p.Lon
	}
	n := float64(len(points))
	return model.Coordinate{Lat: latSum / n, Lon: lonSum / n}
}
