package usecase

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

// fakeReportsRepository は座標と本文だけを返すインメモリのリポジトリ
type fakeReportsRepository struct {
	repository.ReportsRepository
	points []model.GeoPoint
	texts  map[string]model.ReportText
}

func (f *fakeReportsRepository) GetCoordinates(ctx context.Context) ([]model.GeoPoint, error) {
	return f.points, nil
}

func (f *fakeReportsRepository) GetTexts(ctx context.Context, ids []string) ([]model.ReportText, error) {
	var texts []model.ReportText
	for _, id := range ids {
		if t, ok := f.texts[id]; ok {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

// comparerFunc は関数をReportComparisonRepositoryとして扱う
type comparerFunc func(ctx context.Context, a, b model.ReportText) (string, error)

func (f comparerFunc) CompareReports(ctx context.Context, a, b model.ReportText) (string, error) {
	return f(ctx, a, b)
}

type mockScanRepository struct {
	mock.Mock
}

func (m *mockScanRepository) Save(ctx context.Context, scan *model.DuplicateScan) error {
	return m.Called(ctx, scan).Error(0)
}

func (m *mockScanRepository) Get(ctx context.Context, scanID string) (*model.DuplicateScan, error) {
	args := m.Called(ctx, scanID)
	scan, _ := args.Get(0).(*model.DuplicateScan)
	return scan, args.Error(1)
}

type mockImageStorage struct {
	mock.Mock
}

func (m *mockImageStorage) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockImageStorage) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, uploadID, partNumber, expires)
	return args.String(0), args.Error(1)
}

func (m *mockImageStorage) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []model.CompletedPart) error {
	return m.Called(ctx, key, uploadID, parts).Error(0)
}

func (m *mockImageStorage) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	return m.Called(ctx, key, uploadID).Error(0)
}

func (m *mockImageStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, body, size).Error(0)
}

func (m *mockImageStorage) PublicURL(key string) string {
	return "https://urban-pulse-images.s3.ca-central-1.amazonaws.com/" + key
}

type mockDescriptionGenerator struct {
	mock.Mock
}

func (m *mockDescriptionGenerator) GenerateDescription(ctx context.Context, imageURL string) (string, error) {
	args := m.Called(ctx, imageURL)
	return args.String(0), args.Error(1)
}
