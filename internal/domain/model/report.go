package model

import (
	"time"
)

// Urgency レポートの緊急度
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Valid 定義済みの緊急度かどうか
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Rank 並び替え用の順位（LOW < MEDIUM < HIGH）
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	}
	return 0
}

// Report 市民から投稿された都市インフラの問題報告
type Report struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Desc      string    `json:"desc" db:"desc"`
	Lat       float64   `json:"lat" db:"lat"`
	Lon       float64   `json:"lon" db:"lon"`
	Path      string    `json:"path,omitempty" db:"path"` // 画像のオブジェクトキー
	Urgency   Urgency   `json:"urgency" db:"urgency"`
	Rating    float64   `json:"rating" db:"rating"` // 投票の平均値
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReportInput レポート作成・更新リクエスト
type ReportInput struct {
	Title   string   `json:"title"`
	Desc    string   `json:"desc"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Path    string   `json:"path"`
	Urgency Urgency  `json:"urgency"`
}

// Vote ユーザーごとのレポート評価（0〜5）
type Vote struct {
	UserID   string `json:"user_id" db:"user_id"`
	ReportID string `json:"report_id" db:"report_id"`
	Value    int    `json:"vote_value" db:"vote_value"`
}

// VoteRequest 投票リクエスト
type VoteRequest struct {
	Value *int `json:"value"`
}

// RatingResponse 評価値レスポンス
type RatingResponse struct {
	ReportID string  `json:"report_id"`
	Rating   float64 `json:"rating"`
}

// ReportsResponse レポート一覧レスポンス
type ReportsResponse struct {
	Content []Report `json:"content"`
}

// ClustersResponse 近接クラスタ一覧レスポンス
type ClustersResponse struct {
	ThresholdMeters float64   `json:"threshold_meters"`
	MinGroupSize    int       `json:"min_group_size"`
	Clusters        []Cluster `json:"clusters"`
}

// CurrentUser 認証済みユーザー（ホスト型認証プロバイダのトークンから復元）
type CurrentUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
