package model

// InitMultipartUploadRequest マルチパートアップロード開始リクエスト
type InitMultipartUploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
	PartSize int64  `json:"partSize"`
}

// PresignedPart パートごとの署名付きアップロードURL
type PresignedPart struct {
	PartNumber int32  `json:"partNumber"`
	UploadURL  string `json:"uploadUrl"`
}

// MultipartUpload 開始されたマルチパートアップロード
type MultipartUpload struct {
	UploadID string          `json:"uploadId"`
	Key      string          `json:"key"`
	Parts    []PresignedPart `json:"parts"`
	FileURL  string          `json:"fileUrl"`
}

// CompletedPart クライアントがアップロードを終えたパート
type CompletedPart struct {
	ETag       string `json:"ETag"`
	PartNumber int32  `json:"PartNumber"`
}

// CompleteMultipartUploadRequest 完了リクエスト
type CompleteMultipartUploadRequest struct {
	UploadID string          `json:"uploadId"`
	Key      string          `json:"key"`
	Parts    []CompletedPart `json:"parts"`
}

// AbortMultipartUploadRequest 中止リクエスト
type AbortMultipartUploadRequest struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// UploadedImage アップロード済み画像
type UploadedImage struct {
	Key     string `json:"key"`
	FileURL string `json:"fileUrl"`
}

// DescribeImageRequest 画像説明文生成リクエスト
type DescribeImageRequest struct {
	ImagePath string `json:"imagePath"`
}

// DescriptionResponse 生成された説明文
type DescriptionResponse struct {
	Content string `json:"content"`
}
