package model

import (
	"time"
)

// PairStatus レポート組の比較結果の状態
type PairStatus string

const (
	PairStatusMatch    PairStatus = "match"
	PairStatusNoMatch  PairStatus = "no_match"
	PairStatusUnparsed PairStatus = "unparsed"
	PairStatusError    PairStatus = "error"
	PairStatusDryRun   PairStatus = "dry_run"
)

// ReportText 重複判定に使うレポートの文面
type ReportText struct {
	ID    string
	Title string
	Desc  string
}

// PairComparison クラスタ内の2レポートの比較結果
type PairComparison struct {
	ReportA string     `json:"report_a" firestore:"report_a"`
	ReportB string     `json:"report_b" firestore:"report_b"`
	Score   *float64   `json:"score,omitempty" firestore:"score"`
	Status  PairStatus `json:"status" firestore:"status"`
	Error   string     `json:"error,omitempty" firestore:"error"`
}

// DuplicateCluster 比較対象となったクラスタ
type DuplicateCluster struct {
	Center    Coordinate       `json:"center" firestore:"center"`
	MemberIDs []string         `json:"member_ids" firestore:"member_ids"`
	Pairs     []PairComparison `json:"pairs" firestore:"pairs"`
}

// DuplicateScan 近接クラスタとモデル比較による重複候補の一覧
type DuplicateScan struct {
	ID              string             `json:"scan_id"`
	ThresholdMeters float64            `json:"threshold_meters"`
	MinScore        float64            `json:"min_score"`
	DryRun          bool               `json:"dry_run"`
	Clusters        []DuplicateCluster `json:"clusters"`
	CreatedAt       time.Time          `json:"created_at"`
	ExpiresAt       time.Time          `json:"expires_at,omitzero"` // 保存されたときのみ
}

// DuplicateScanRequest 重複スキャンのリクエスト
type DuplicateScanRequest struct {
	ThresholdMeters *float64 `json:"threshold_meters"`
	MinScore        *float64 `json:"min_score"`
}

// FirestoreDuplicateScan Firestore保存用の構造体
type FirestoreDuplicateScan struct {
	ThresholdMeters float64            `firestore:"threshold_meters"`
	MinScore        float64            `firestore:"min_score"`
	DryRun          bool               `firestore:"dry_run"`
	Clusters        []DuplicateCluster `firestore:"clusters"`
	CreatedAt       time.Time          `firestore:"created_at"`
	ExpireAt        time.Time          `firestore:"expireAt"`
}

// ToFirestoreDuplicateScan TTL付きのFirestore保存形式に変換（scan自体は変更しない）
func (s *DuplicateScan) ToFirestoreDuplicateScan(ttlHours int) *FirestoreDuplicateScan {
	return &FirestoreDuplicateScan{
		ThresholdMeters: s.ThresholdMeters,
		MinScore:        s.MinScore,
		DryRun:          s.DryRun,
		Clusters:        s.Clusters,
		CreatedAt:       s.CreatedAt,
		ExpireAt:        s.CreatedAt.Add(time.Duration(ttlHours) * time.Hour),
	}
}

// Expired expireAt を過ぎているか（expireAt なしは期限なし）
func (f *FirestoreDuplicateScan) Expired(now time.Time) bool {
	return !f.ExpireAt.IsZero() && now.After(f.ExpireAt)
}

// ToDuplicateScan Firestoreのドキュメントからドメインモデルに戻す
func (f *FirestoreDuplicateScan) ToDuplicateScan(scanID string) *DuplicateScan {
	return &DuplicateScan{
		ID:              scanID,
		ThresholdMeters: f.ThresholdMeters,
		MinScore:        f.MinScore,
		DryRun:          f.DryRun,
		Clusters:        f.Clusters,
		CreatedAt:       f.CreatedAt,
		ExpiresAt:       f.ExpireAt,
	}
}
