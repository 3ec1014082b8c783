package model

// クラスタリングの既定値
const (
	DefaultClusterThresholdMeters = 100.0
	DefaultClusterMinGroupSize    = 2
	EarthRadiusMeters             = 6371000.0
)

// レポートの制約
const (
	MaxReportTitleLength = 128
	MinVoteValue         = 0
	MaxVoteValue         = 5
	MaxPageSize          = 100
)

// 重複判定の既定値
const (
	DefaultDuplicateMinScore = 0.7
	DefaultDuplicateTTLHours = 24
)

// マルチパートアップロードの制約（S3の仕様に合わせる）
const (
	DefaultUploadPartSize = 5 * 1024 * 1024
	MaxUploadParts        = 10000
	UploadKeyPrefix       = "uploads/"
)
