package model

import "math"

// GeoPoint クラスタリング対象となる地点（レポートIDと緯度経度）
type GeoPoint struct {
	ID  string  `json:"id" db:"id"`   // 地点を識別する不透明なID
	Lat float64 `json:"lat" db:"lat"` // 緯度 [-90, 90]
	Lon float64 `json:"lon" db:"lon"` // 経度 [-180, 180]
}

// Valid 緯度経度が有限値かつ範囲内かを判定する
func (p GeoPoint) Valid() bool {
	return ValidLatLon(p.Lat, p.Lon)
}

// Coordinate 既存の地点とは限らない座標（クラスタ中心など）
type Coordinate struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lon float64 `json:"lon" firestore:"lon"`
}

// Cluster 近接するレポートのグループ
type Cluster struct {
	Center  Coordinate `json:"center"`  // メンバー緯度経度の算術平均
	Members []GeoPoint `json:"members"` // 発見順
}

// MemberIDs クラスタに属する地点IDを発見順で返す
func (c Cluster) MemberIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// ValidLatLon 緯度経度の数値検証
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundingBox 地図表示範囲（経度・緯度の最小/最大）
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}
