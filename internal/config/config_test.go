package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 実行環境の設定値がテストに混ざらないよう空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "REPORT_STORE", "STORAGE_BACKEND", "CLUSTER_THRESHOLD_METERS", "CLUSTER_MIN_GROUP_SIZE",
		"DUPLICATE_SCAN_TTL_HOURS", "LLM_VISION_MODEL", "LLM_COMPARE_MODEL", "OPENAI_API_KEY", "MINIO_USE_SSL",
		"LLM_MAX_CONCURRENCY", "LLM_REQUESTS_PER_SECOND",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.ReportStore)
	assert.Equal(t, StorageS3, cfg.StorageBackend)
	assert.Equal(t, 100.0, cfg.ClusterThresholdMeters)
	assert.Equal(t, 2, cfg.ClusterMinGroupSize)
	assert.Equal(t, 24, cfg.DuplicateScanTTLHours)
	assert.Equal(t, "meta-llama/llama-3.2-11b-vision-instruct", cfg.LLMVisionModel)
	assert.Equal(t, cfg.LLMVisionModel, cfg.LLMCompareModel)
	assert.False(t, cfg.LLMEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_STORE", "Supabase")
	t.Setenv("CLUSTER_THRESHOLD_METERS", "60.5")
	t.Setenv("CLUSTER_MIN_GROUP_SIZE", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LLM_COMPARE_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreSupabase, cfg.ReportStore)
	assert.Equal(t, 60.5, cfg.ClusterThresholdMeters)
	assert.Equal(t, 3, cfg.ClusterMinGroupSize)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMCompareModel)
	assert.True(t, cfg.LLMEnabled())
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	tests := map[string]string{
		"CLUSTER_THRESHOLD_METERS": "near",
		"CLUSTER_MIN_GROUP_SIZE":   "two",
		"DUPLICATE_SCAN_TTL_HOURS": "1.5",
		"MINIO_USE_SSL":            "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		t.Helper()
		cfg, err := FromEnv()
		require.NoError(t, err)
		cfg.AuthJWTSecret = "secret"
		cfg.DatabaseURL = "postgres://localhost/urban_pulse?sslmode=disable"
		cfg.S3BucketName = "urban-pulse-images"
		return cfg
	}

	t.Run("postgres + s3", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("JWTシークレットなし", func(t *testing.T) {
		cfg := base()
		cfg.AuthJWTSecret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	})

	t.Run("supabaseの設定不足", func(t *testing.T) {
		cfg := base()
		cfg.ReportStore = StoreSupabase
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SUPABASE_URL")
		assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
	})

	t.Run("minioのエンドポイントなし", func(t *testing.T) {
		cfg := base()
		cfg.StorageBackend = StorageMinio
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MINIO_ENDPOINT")
	})

	t.Run("クラスタの既定値が不正", func(t *testing.T) {
		for name, mutate := range map[string]func(*Config){
			"負のしきい値":     func(c *Config) { c.ClusterThresholdMeters = -1 },
			"NaNのしきい値":   func(c *Config) { c.ClusterThresholdMeters = math.NaN() },
			"無限大のしきい値":   func(c *Config) { c.ClusterThresholdMeters = math.Inf(1) },
			"最小グループサイズ0": func(c *Config) { c.ClusterMinGroupSize = 0 },
		} {
			cfg := base()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err, name)
			assert.Contains(t, err.Error(), "CLUSTER_THRESHOLD_METERS", name)
		}

		cfg := base()
		cfg.ClusterThresholdMeters = 0
		cfg.ClusterMinGroupSize = 1
		assert.NoError(t, cfg.Validate())
	})

	t.Run("不明なストア", func(t *testing.T) {
		cfg := base()
		cfg.ReportStore = "mysql"
		assert.Error(t, cfg.Validate())
	})
}
