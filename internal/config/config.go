package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/service"
)

const (
	StorePostgres = "postgres"
	StoreSupabase = "supabase"

	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Config 環境変数から読み込むアプリケーション設定
type Config struct {
	Port    string
	GinMode string

	ReportStore     string
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string

	FirestoreProjectID    string
	GoogleCredentialsFile string
	DuplicateScanTTLHours int

	StorageBackend string
	AWSRegion      string
	S3BucketName   string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioRegion    string
	MinioUseSSL    bool

	OpenAIBaseURL        string
	OpenAIAPIKey         string
	LLMVisionModel       string
	LLMCompareModel      string
	LLMMaxConcurrency    int
	LLMRequestsPerSecond float64

	MapboxToken   string
	AuthJWTSecret string

	ClusterThresholdMeters float64
	ClusterMinGroupSize    int
}

// Load .env（なければ警告のみ）と環境変数から設定を読み込む
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv 環境変数だけから設定を組み立てる。数値の形式が不正ならエラー
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),

		ReportStore:     strings.ToLower(getEnv("REPORT_STORE", StorePostgres)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),

		FirestoreProjectID:    os.Getenv("FIRESTORE_PROJECT_ID"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageS3)),
		AWSRegion:      getEnv("AWS_REGION", "ca-central-1"),
		S3BucketName:   os.Getenv("S3_BUCKET_NAME"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),

		OpenAIBaseURL:   getEnv("OPENAI_API_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		LLMVisionModel:  getEnv("LLM_VISION_MODEL", "meta-llama/llama-3.2-11b-vision-instruct"),
		LLMCompareModel: os.Getenv("LLM_COMPARE_MODEL"),

		MapboxToken:   os.Getenv("MAPBOX_TOKEN"),
		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
	}

	var err error
	if cfg.DuplicateScanTTLHours, err = getEnvInt("DUPLICATE_SCAN_TTL_HOURS", model.DefaultDuplicateTTLHours); err != nil {
		return nil, err
	}
	if cfg.MinioUseSSL, err = getEnvBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.LLMMaxConcurrency, err = getEnvInt("LLM_MAX_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.LLMRequestsPerSecond, err = getEnvFloat("LLM_REQUESTS_PER_SECOND", 2); err != nil {
		return nil, err
	}
	if cfg.ClusterThresholdMeters, err = getEnvFloat("CLUSTER_THRESHOLD_METERS", model.DefaultClusterThresholdMeters); err != nil {
		return nil, err
	}
	if cfg.ClusterMinGroupSize, err = getEnvInt("CLUSTER_MIN_GROUP_SIZE", model.DefaultClusterMinGroupSize); err != nil {
		return nil, err
	}

	// 比較用モデルの指定がなければ画像説明と同じモデルを使う
	if cfg.LLMCompareModel == "" {
		cfg.LLMCompareModel = cfg.LLMVisionModel
	}
	return cfg, nil
}

// Validate 選択されたバックエンドに必要な値が揃っているか確認する
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("AUTH_JWT_SECRET", c.AuthJWTSecret)

	switch c.ReportStore {
	case StorePostgres:
		require("DATABASE_URL", c.DatabaseURL)
	case StoreSupabase:
		require("SUPABASE_URL", c.SupabaseURL)
		require("SUPABASE_ANON_KEY", c.SupabaseAnonKey)
	default:
		return fmt.Errorf("REPORT_STORE は %s または %s を指定してください: %q", StorePostgres, StoreSupabase, c.ReportStore)
	}

	switch c.StorageBackend {
	case StorageS3:
		require("AWS_REGION", c.AWSRegion)
		require("S3_BUCKET_NAME", c.S3BucketName)
	case StorageMinio:
		require("MINIO_ENDPOINT", c.MinioEndpoint)
		require("S3_BUCKET_NAME", c.S3BucketName)
	default:
		return fmt.Errorf("STORAGE_BACKEND は %s または %s を指定してください: %q", StorageS3, StorageMinio, c.StorageBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("必要な環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if c.DuplicateScanTTLHours <= 0 {
		return fmt.Errorf("DUPLICATE_SCAN_TTL_HOURS は正の値を指定してください: %d", c.DuplicateScanTTLHours)
	}
	// クラスタの既定値はクラスタラーと同じ規則で検証する
	if _, err := service.NewProximityClusterer(c.ClusterThresholdMeters, c.ClusterMinGroupSize); err != nil {
		return fmt.Errorf("CLUSTER_THRESHOLD_METERS / CLUSTER_MIN_GROUP_SIZE が不正です: %w", err)
	}
	if c.LLMMaxConcurrency <= 0 || c.LLMRequestsPerSecond <= 0 {
		return fmt.Errorf("LLM_MAX_CONCURRENCY と LLM_REQUESTS_PER_SECOND は正の値を指定してください")
	}
	return nil
}

// LLMEnabled ホスト型モデルのAPIキーが設定されているか
func (c *Config) LLMEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s の値が整数ではありません: %q", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s の値が数値ではありません: %q", key, v)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s の値が真偽値ではありません: %q", key, v)
	}
	return b, nil
}
