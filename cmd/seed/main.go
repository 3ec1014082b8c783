package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"urban-pulse/internal/bootstrap"
	"urban-pulse/internal/config"
	"urban-pulse/internal/domain/model"
)

const fallbackSeedUserID = "11111111-1111-1111-1111-111111111111"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: seed <path-to-geojson> [userId]")
		os.Exit(1)
	}

	userID := ""
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}
	if err := run(os.Args[1], userID); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(geoPath, userID string) error {
	data, err := os.ReadFile(geoPath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込み失敗: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("GeoJSON FeatureCollectionではありません: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込み失敗: %w", err)
	}

	if userID == "" {
		userID = os.Getenv("SEED_USER_ID")
	}
	if userID == "" {
		userID = fallbackSeedUserID
	}

	ctx := context.Background()
	store, err := bootstrap.OpenReportStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	created := 0
	for _, report := range reportsFromFeatures(fc, userID) {
		if err := store.Reports.Create(ctx, report); err != nil {
			return fmt.Errorf("レポートの作成失敗 (%d件作成済み): %w", created, err)
		}
		created++
	}

	fmt.Printf("Seeded %d report(s) from %s.\n", created, filepath.Base(geoPath))
	return nil
}

// reportsFromFeatures Point のフィーチャーだけを LOW のレポートに変換する
func reportsFromFeatures(fc *geojson.FeatureCollection, userID string) []*model.Report {
	reports := []*model.Report{}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		point, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		if !model.ValidLatLon(point.Lat(), point.Lon()) {
			continue
		}

		title := f.Properties.MustString("name", "")
		if title == "" {
			title = f.Properties.MustString("full_address", "")
		}
		if title == "" {
			title = "Seeded Report"
		}
		if r := []rune(title); len(r) > model.MaxReportTitleLength {
			title = string(r[:model.MaxReportTitleLength])
		}

		desc := "Seeded from GeoJSON"
		if featureType := f.Properties.MustString("feature_type", ""); featureType != "" {
			desc = fmt.Sprintf("Seeded from GeoJSON (%s)", featureType)
		}

		reports = append(reports, &model.Report{
			ID:      uuid.New().String(),
			UserID:  userID,
			Title:   title,
			Desc:    desc,
			Lat:     point.Lat(),
			Lon:     point.Lon(),
			Urgency: model.UrgencyLow,
		})
	}
	return reports
}
