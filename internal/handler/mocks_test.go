package handler

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"urban-pulse/internal/domain/model"
)

type stubVerifier struct{}

// Verify "Bearer valid-<userID>" だけを受け付ける
func (stubVerifier) Verify(token string) (*model.CurrentUser, error) {
	const prefix = "Bearer valid-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, model.ErrUnauthorized
	}
	return &model.CurrentUser{ID: token[len(prefix):]}, nil
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) CreateReport(ctx context.Context, user *model.CurrentUser, req *model.ReportInput) (*model.Report, error) {
	args := m.Called(user.ID, req)
	report, _ := args.Get(0).(*model.Report)
	return report, args.Error(1)
}

func (m *mockReportService) ListReports(ctx context.Context, user *model.CurrentUser) ([]model.Report, error) {
	args := m.Called(user.ID)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *mockReportService) ListReportsPage(ctx context.Context, user *model.CurrentUser, page, pageSize int) ([]model.Report, error) {
	args := m.Called(user.ID, page, pageSize)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *mockReportService) GetReport(ctx context.Context, user *model.CurrentUser, id string) (*model.Report, error) {
	args := m.Called(user.ID, id)
	report, _ := args.Get(0).(*model.Report)
	return report, args.Error(1)
}

func (m *mockReportService) UpdateReport(ctx context.Context, user *model.CurrentUser, id string, req *model.ReportInput) (*model.Report, error) {
	args := m.Called(user.ID, id, req)
	report, _ := args.Get(0).(*model.Report)
	return report, args.Error(1)
}

func (m *mockReportService) DeleteReport(ctx context.Context, user *model.CurrentUser, id string) error {
	return m.Called(user.ID, id).Error(0)
}

func (m *mockReportService) ListUserReports(ctx context.Context, user *model.CurrentUser, userID string) ([]model.Report, error) {
	args := m.Called(user.ID, userID)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *mockReportService) ListReportsInBounds(ctx context.Context, user *model.CurrentUser, bbox model.BoundingBox) ([]model.Report, error) {
	args := m.Called(user.ID, bbox)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *mockReportService) Vote(ctx context.Context, user *model.CurrentUser, reportID string, value int) (float64, error) {
	args := m.Called(user.ID, reportID, value)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockReportService) GetRating(ctx context.Context, user *model.CurrentUser, reportID string) (float64, error) {
	args := m.Called(user.ID, reportID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockReportService) ReportCoordinates(ctx context.Context, user *model.CurrentUser) ([]model.GeoPoint, error) {
	args := m.Called(user.ID)
	points, _ := args.Get(0).([]model.GeoPoint)
	return points, args.Error(1)
}

func (m *mockReportService) NearbyClusters(ctx context.Context, user *model.CurrentUser, thresholdMeters float64, minGroupSize int) ([]model.Cluster, error) {
	args := m.Called(user.ID, thresholdMeters, minGroupSize)
	clusters, _ := args.Get(0).([]model.Cluster)
	return clusters, args.Error(1)
}

type mockDuplicateUseCase struct {
	mock.Mock
}

func (m *mockDuplicateUseCase) ScanDuplicates(ctx context.Context, thresholdMeters, minScore float64) (*model.DuplicateScan, error) {
	args := m.Called(thresholdMeters, minScore)
	scan, _ := args.Get(0).(*model.DuplicateScan)
	return scan, args.Error(1)
}

func (m *mockDuplicateUseCase) GetScan(ctx context.Context, scanID string) (*model.DuplicateScan, error) {
	args := m.Called(scanID)
	scan, _ := args.Get(0).(*model.DuplicateScan)
	return scan, args.Error(1)
}

type mockUploadUseCase struct {
	mock.Mock
}

func (m *mockUploadUseCase) InitMultipartUpload(ctx context.Context, req *model.InitMultipartUploadRequest) (*model.MultipartUpload, error) {
	args := m.Called(req)
	upload, _ := args.Get(0).(*model.MultipartUpload)
	return upload, args.Error(1)
}

func (m *mockUploadUseCase) CompleteMultipartUpload(ctx context.Context, req *model.CompleteMultipartUploadRequest) (*model.UploadedImage, error) {
	args := m.Called(req)
	image, _ := args.Get(0).(*model.UploadedImage)
	return image, args.Error(1)
}

func (m *mockUploadUseCase) AbortMultipartUpload(ctx context.Context, req *model.AbortMultipartUploadRequest) error {
	return m.Called(req).Error(0)
}

func (m *mockUploadUseCase) UploadImage(ctx context.Context, fileName, contentType string, body io.Reader, size int64) (*model.UploadedImage, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(fileName, contentType, string(data), size)
	image, _ := args.Get(0).(*model.UploadedImage)
	return image, args.Error(1)
}

type stubDescriptionUseCase struct {
	content string
	err     error
}

func (s stubDescriptionUseCase) GenerateDescription(ctx context.Context, imagePath string) (string, error) {
	return s.content, s.err
}

type stubGeocodeUseCase struct {
	name string
	err  error
}

func (s stubGeocodeUseCase) LocationName(ctx context.Context, lat, lon float64) (string, error) {
	return s.name, s.err
}
