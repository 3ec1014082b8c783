// Package bootstrap は設定から各バックエンドの実装を組み立てる
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"urban-pulse/internal/config"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/infrastructure/ai"
	"urban-pulse/internal/infrastructure/database"
	"urban-pulse/internal/infrastructure/firestore"
	"urban-pulse/internal/infrastructure/maps"
	"urban-pulse/internal/infrastructure/storage"
	repoimpl "urban-pulse/internal/repository"
)

// ReportStore レポートの保存先と、その疎通確認・後始末
type ReportStore struct {
	Reports repository.ReportsRepository
	Health  func(ctx context.Context) error
	Close   func()
}

// OpenReportStore REPORT_STORE に応じて Postgres か Supabase のリポジトリを作成する
func OpenReportStore(ctx context.Context, cfg *config.Config) (*ReportStore, error) {
	switch cfg.ReportStore {
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL環境変数が設定されていません")
		}
		client, err := database.NewPostgreSQLClientWithRetry(cfg.DatabaseURL, 5, 2*time.Second)
		if err != nil {
			return nil, fmt.Errorf("PostgreSQLクライアント初期化失敗: %w", err)
		}
		if err := client.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("スキーマの作成失敗: %w", err)
		}
		log.Println("✅ PostgreSQL report store ready")
		return &ReportStore{
			Reports: repoimpl.NewPostgresReportsRepository(client),
			Health:  client.HealthCheck,
			Close:   func() { client.Close() },
		}, nil

	case config.StoreSupabase:
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, fmt.Errorf("Supabaseクライアント初期化失敗: %w", err)
		}
		log.Println("✅ Supabase report store ready")
		return &ReportStore{
			Reports: repoimpl.NewSupabaseReportsRepository(client),
			Health:  func(ctx context.Context) error { return client.HealthCheck() },
			Close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("未対応のREPORT_STORE: %q", cfg.ReportStore)
}

// OpenScanStore FIRESTORE_PROJECT_ID があれば重複スキャン結果の保存先を作成する
// 未設定なら nil を返し、スキャン結果は保存されない
func OpenScanStore(ctx context.Context, cfg *config.Config) (repository.DuplicateScanRepository, func(), error) {
	if cfg.FirestoreProjectID == "" {
		log.Println("⚠️ FIRESTORE_PROJECT_ID not set, duplicate scans will not be stored")
		return nil, func() {}, nil
	}

	client, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("Firestoreクライアント初期化失敗: %w", err)
	}
	log.Println("✅ Firestore scan store ready")
	return repoimpl.NewFirestoreDuplicateScanRepository(client.GetClient(), cfg.DuplicateScanTTLHours),
		func() { client.Close() }, nil
}

// OpenImageStorage STORAGE_BACKEND に応じて S3 か MinIO のストレージを作成する
func OpenImageStorage(ctx context.Context, cfg *config.Config) (repository.ImageStorageRepository, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3ImageStorage(ctx, cfg.AWSRegion, cfg.S3BucketName)
	case config.StorageMinio:
		return storage.NewMinioImageStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioRegion, cfg.S3BucketName, cfg.MinioUseSSL)
	}
	return nil, fmt.Errorf("未対応のSTORAGE_BACKEND: %q", cfg.StorageBackend)
}

// NewTextGenerator OPENAI_API_KEY があればホスト型モデルのクライアントを作成する（なければ nil）
func NewTextGenerator(cfg *config.Config) ai.ReportTextGenerator {
	if !cfg.LLMEnabled() {
		log.Println("⚠️ OPENAI_API_KEY not set, description and duplicate comparison are disabled")
		return nil
	}
	return ai.NewReportTextGenerator(ai.NewLLMClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), cfg.LLMVisionModel, cfg.LLMCompareModel)
}

// NewGeocoder MAPBOX_TOKEN があれば逆ジオコーディングのクライアントを作成する（なければ nil）
func NewGeocoder(cfg *config.Config) repository.GeocodingRepository {
	if cfg.MapboxToken == "" {
		log.Println("⚠️ MAPBOX_TOKEN not set, reverse geocoding is disabled")
		return nil
	}
	return maps.NewMapboxGeocodingProvider(cfg.MapboxToken)
}
