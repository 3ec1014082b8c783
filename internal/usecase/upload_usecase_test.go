package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"urban-pulse/internal/domain/model"
)

func newTestUploadUseCase(storage *mockImageStorage) *uploadUseCaseImpl {
	uc := NewUploadUseCase(storage).(*uploadUseCaseImpl)
	uc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return uc
}

func TestInitMultipartUpload(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)
	key := "uploads/1700000000000-pothole.jpg"

	storage.On("CreateMultipartUpload", mock.Anything, key, "image/jpeg").Return("upload-1", nil).Once()
	for i := int32(1); i <= 3; i++ {
		storage.On("PresignUploadPart", mock.Anything, key, "upload-1", i, time.Hour).
			Return("https://signed.example/part", nil).Once()
	}

	// 12MiB / 5MiB = 3パート
	res, err := uc.InitMultipartUpload(context.Background(), &model.InitMultipartUploadRequest{
		FileName: "pothole.jpg",
		FileType: "image/jpeg",
		FileSize: 12 * 1024 * 1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "upload-1", res.UploadID)
	assert.Equal(t, key, res.Key)
	require.Len(t, res.Parts, 3)
	assert.Equal(t, int32(1), res.Parts[0].PartNumber)
	assert.Equal(t, int32(3), res.Parts[2].PartNumber)
	assert.Equal(t, "https://urban-pulse-images.s3.ca-central-1.amazonaws.com/"+key, res.FileURL)
	storage.AssertExpectations(t)
}

func TestInitMultipartUpload_ExactMultiple(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	storage.On("CreateMultipartUpload", mock.Anything, mock.Anything, mock.Anything).Return("upload-1", nil)
	storage.On("PresignUploadPart", mock.Anything, mock.Anything, "upload-1", mock.Anything, time.Hour).Return("u", nil)

	res, err := uc.InitMultipartUpload(context.Background(), &model.InitMultipartUploadRequest{
		FileName: "a.png", FileType: "image/png", FileSize: 2048, PartSize: 1024,
	})
	require.NoError(t, err)
	assert.Len(t, res.Parts, 2)
}

func TestInitMultipartUpload_Validation(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	bad := []*model.InitMultipartUploadRequest{
		{FileType: "image/png", FileSize: 10},
		{FileName: "a.png", FileSize: 10},
		{FileName: "a.png", FileType: "image/png"},
		{FileName: "a.png", FileType: "image/png", FileSize: 10001, PartSize: 1},
		{FileName: "a.png", FileType: "image/png", FileSize: 10, PartSize: -1},
		{FileName: "a.png", FileType: "image/png", FileSize: math.MaxInt64},
	}
	for _, req := range bad {
		_, err := uc.InitMultipartUpload(context.Background(), req)
		var vErr *model.ValidationError
		assert.True(t, errors.As(err, &vErr), "%+v", req)
	}
	storage.AssertNotCalled(t, "CreateMultipartUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitMultipartUpload_HugePartSize(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	storage.On("CreateMultipartUpload", mock.Anything, mock.Anything, mock.Anything).Return("upload-1", nil).Once()
	storage.On("PresignUploadPart", mock.Anything, mock.Anything, "upload-1", int32(1), time.Hour).Return("u", nil).Once()

	// 1パートに収まる巨大なpartSizeでもオーバーフローしない
	res, err := uc.InitMultipartUpload(context.Background(), &model.InitMultipartUploadRequest{
		FileName: "a.png", FileType: "image/png", FileSize: 10, PartSize: math.MaxInt64,
	})
	require.NoError(t, err)
	assert.Len(t, res.Parts, 1)
	storage.AssertExpectations(t)
}

func TestInitMultipartUpload_PresignFailureAborts(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	storage.On("CreateMultipartUpload", mock.Anything, mock.Anything, mock.Anything).Return("upload-1", nil)
	storage.On("PresignUploadPart", mock.Anything, mock.Anything, "upload-1", int32(1), time.Hour).Return("", errors.New("no credentials"))
	storage.On("AbortMultipartUpload", mock.Anything, mock.Anything, "upload-1").Return(nil).Once()

	_, err := uc.InitMultipartUpload(context.Background(), &model.InitMultipartUploadRequest{
		FileName: "a.png", FileType: "image/png", FileSize: 10,
	})
	assert.Error(t, err)
	storage.AssertExpectations(t)
}

func TestCompleteMultipartUpload_StripsETagQuotes(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	storage.On("CompleteMultipartUpload", mock.Anything, "uploads/1-a.png", "upload-1", []model.CompletedPart{
		{ETag: "abc123", PartNumber: 1},
		{ETag: "def456", PartNumber: 2},
	}).Return(nil).Once()

	res, err := uc.CompleteMultipartUpload(context.Background(), &model.CompleteMultipartUploadRequest{
		UploadID: "upload-1",
		Key:      "uploads/1-a.png",
		Parts: []model.CompletedPart{
			{ETag: `"abc123"`, PartNumber: 1},
			{ETag: `'def456'`, PartNumber: 2},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.FileURL, "/uploads/1-a.png"))
	storage.AssertExpectations(t)

	_, err = uc.CompleteMultipartUpload(context.Background(), &model.CompleteMultipartUploadRequest{UploadID: "upload-1", Key: "k"})
	var vErr *model.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestAbortMultipartUpload(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)

	storage.On("AbortMultipartUpload", mock.Anything, "uploads/1-a.png", "upload-1").Return(nil).Once()
	require.NoError(t, uc.AbortMultipartUpload(context.Background(), &model.AbortMultipartUploadRequest{UploadID: "upload-1", Key: "uploads/1-a.png"}))

	err := uc.AbortMultipartUpload(context.Background(), &model.AbortMultipartUploadRequest{Key: "uploads/1-a.png"})
	var vErr *model.ValidationError
	assert.True(t, errors.As(err, &vErr))
	storage.AssertExpectations(t)
}

func TestUploadImage(t *testing.T) {
	storage := new(mockImageStorage)
	uc := newTestUploadUseCase(storage)
	body := strings.NewReader("fake-jpeg-bytes")

	// ディレクトリ部分は取り除かれる
	storage.On("PutObject", mock.Anything, "uploads/1700000000000-bench.jpg", "image/jpeg", body, int64(15)).Return(nil).Once()

	res, err := uc.UploadImage(context.Background(), "../../bench.jpg", "image/jpeg", body, 15)
	require.NoError(t, err)
	assert.Equal(t, "uploads/1700000000000-bench.jpg", res.Key)
	storage.AssertExpectations(t)
}
