package model

import "errors"

var (
	ErrUnauthorized   = errors.New("認証が必要です")
	ErrReportNotFound = errors.New("レポートが見つからないか、操作する権限がありません")
	ErrInvalidVote    = errors.New("投票値は0から5の整数で指定してください")
	ErrScanNotFound   = errors.New("重複スキャン結果が見つかりません（有効期限切れまたは無効なID）")
	ErrNotConfigured  = errors.New("外部サービスが設定されていません")
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
