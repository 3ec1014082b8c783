package repository

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"urban-pulse/internal/domain/model"
)

// BoundingBoxToBound model.BoundingBox を orb.Bound に変換
func BoundingBoxToBound(bbox model.BoundingBox) orb.Bound {
	return orb.Bound{
		Min: orb.Point{bbox.MinLon, bbox.MinLat},
		Max: orb.Point{bbox.MaxLon, bbox.MaxLat},
	}
}

// BoundingBoxToWKT 境界ボックスを PostGIS の ST_GeomFromText に渡せる WKT ポリゴンに変換
func BoundingBoxToWKT(bbox model.BoundingBox) string {
	return wkt.MarshalString(BoundingBoxToBound(bbox).ToPolygon())
}

// ReportInBound レポートの位置が境界ボックス内（境界を含む）にあるか
func ReportInBound(report *model.Report, bbox model.BoundingBox) bool {
	return BoundingBoxToBound(bbox).Contains(orb.Point{report.Lon, report.Lat})
}
