package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/usecase"
)

// UploadsHandler 画像アップロードと説明文生成のハンドラー
type UploadsHandler struct {
	uploadUseCase      usecase.UploadUseCase
	descriptionUseCase usecase.DescriptionUseCase
}

func NewUploadsHandler(uploadUseCase usecase.UploadUseCase, descriptionUseCase usecase.DescriptionUseCase) *UploadsHandler {
	return &UploadsHandler{
		uploadUseCase:      uploadUseCase,
		descriptionUseCase: descriptionUseCase,
	}
}

// InitMultipart POST /uploads/multipart - マルチパートアップロードの開始
func (h *UploadsHandler) InitMultipart(c *gin.Context) {
	var req model.InitMultipartUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	upload, err := h.uploadUseCase.InitMultipartUpload(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Multipart init failed", err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// CompleteMultipart PATCH /uploads/multipart - マルチパートアップロードの完了
func (h *UploadsHandler) CompleteMultipart(c *gin.Context) {
	var req model.CompleteMultipartUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	image, err := h.uploadUseCase.CompleteMultipartUpload(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Complete multipart failed", err)
		return
	}
	c.JSON(http.StatusOK, image)
}

// AbortMultipart DELETE /uploads/multipart - マルチパートアップロードの中止
func (h *UploadsHandler) AbortMultipart(c *gin.Context) {
	var req model.AbortMultipartUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	if err := h.uploadUseCase.AbortMultipartUpload(c.Request.Context(), &req); err != nil {
		respondError(c, "Abort failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UploadDirect POST /uploads/direct - フォームの file をサーバー経由でアップロード
func (h *UploadsHandler) UploadDirect(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "fileフィールドが必要です", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "ファイルを開けませんでした", err)
		return
	}
	defer file.Close()

	image, err := h.uploadUseCase.UploadImage(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		respondError(c, "画像のアップロードに失敗しました", err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

// Describe POST /reports/describe - 画像から説明文を生成
func (h *UploadsHandler) Describe(c *gin.Context) {
	var req model.DescribeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	content, err := h.descriptionUseCase.GenerateDescription(c.Request.Context(), req.ImagePath)
	if err != nil {
		respondError(c, "説明文の生成に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, model.DescriptionResponse{Content: content})
}
