package usecase

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"urban-pulse/internal/domain/model"
)

// 2つの近接クラスタ（A,B と C,D,E）と孤立した F
func newDuplicateFixture() *fakeReportsRepository {
	return &fakeReportsRepository{
		points: []model.GeoPoint{
			{ID: "A", Lat: 43.6532, Lon: -79.3832},
			{ID: "B", Lat: 43.6533, Lon: -79.3833},
			{ID: "C", Lat: 43.6700, Lon: -79.3900},
			{ID: "D", Lat: 43.6701, Lon: -79.3901},
			{ID: "E", Lat: 43.6702, Lon: -79.3900},
			{ID: "F", Lat: 43.7500, Lon: -79.5000},
		},
		texts: map[string]model.ReportText{
			"A": {ID: "A", Title: "Pothole", Desc: "Big pothole on King St"},
			"B": {ID: "B", Title: "Hole in road", Desc: "Large pothole near King St crosswalk"},
			"C": {ID: "C", Title: "Graffiti", Desc: "Graffiti on the bus shelter"},
			"D": {ID: "D", Title: "Tagging", Desc: "Spray paint on shelter glass"},
			"E": {ID: "E", Title: "Broken bench", Desc: "Bench slats are snapped"},
			"F": {ID: "F", Title: "Litter", Desc: "Trash everywhere"},
		},
	}
}

func pairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "-" + ids[1]
}

func pairsByKey(scan *model.DuplicateScan) map[string]model.PairComparison {
	out := map[string]model.PairComparison{}
	for _, c := range scan.Clusters {
		for _, p := range c.Pairs {
			out[pairKey(p.ReportA, p.ReportB)] = p
		}
	}
	return out
}

func TestScanDuplicates_WithModel(t *testing.T) {
	replies := map[string]struct {
		reply string
		err   error
	}{
		"A-B": {reply: "0.92"},
		"C-D": {reply: "Score: 0.71"},
		"C-E": {reply: "0.1"},
		"D-E": {err: errors.New("upstream 502")},
	}
	var calls int32
	comparer := comparerFunc(func(ctx context.Context, a, b model.ReportText) (string, error) {
		atomic.AddInt32(&calls, 1)
		r := replies[pairKey(a.ID, b.ID)]
		return r.reply, r.err
	})

	scanRepo := new(mockScanRepository)
	scanRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.DuplicateScan")).Return(nil).Once()

	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), comparer, scanRepo, nil,
		DuplicateDetectionOptions{MaxConcurrency: 3, RequestsPerSecond: 1000})

	scan, err := uc.ScanDuplicates(context.Background(), 100, 0.7)
	require.NoError(t, err)

	assert.False(t, scan.DryRun)
	assert.NotEmpty(t, scan.ID)
	require.Len(t, scan.Clusters, 2)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

	pairs := pairsByKey(scan)
	require.Len(t, pairs, 4)

	assert.Equal(t, model.PairStatusMatch, pairs["A-B"].Status)
	assert.InDelta(t, 0.92, *pairs["A-B"].Score, 1e-9)
	assert.Equal(t, model.PairStatusMatch, pairs["C-D"].Status)
	assert.Equal(t, model.PairStatusNoMatch, pairs["C-E"].Status)
	assert.Equal(t, model.PairStatusError, pairs["D-E"].Status)
	assert.Contains(t, pairs["D-E"].Error, "upstream 502")
	assert.Nil(t, pairs["D-E"].Score)

	scanRepo.AssertExpectations(t)
}

func TestScanDuplicates_UnparsedReply(t *testing.T) {
	comparer := comparerFunc(func(ctx context.Context, a, b model.ReportText) (string, error) {
		return "They look like the same issue.", nil
	})
	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), comparer, nil, nil, DuplicateDetectionOptions{MaxConcurrency: 1})

	scan, err := uc.ScanDuplicates(context.Background(), 100, 0.7)
	require.NoError(t, err)
	for _, p := range pairsByKey(scan) {
		assert.Equal(t, model.PairStatusUnparsed, p.Status)
		assert.Nil(t, p.Score)
	}
}

func TestScanDuplicates_DryRun(t *testing.T) {
	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), nil, nil, nil, DuplicateDetectionOptions{})

	scan, err := uc.ScanDuplicates(context.Background(), 100, 0.7)
	require.NoError(t, err)

	assert.True(t, scan.DryRun)
	pairs := pairsByKey(scan)
	assert.Len(t, pairs, 4)
	for _, p := range pairs {
		assert.Equal(t, model.PairStatusDryRun, p.Status)
	}
	assert.True(t, scan.ExpiresAt.IsZero())
}

func TestScanDuplicates_SkipsMissingTexts(t *testing.T) {
	repo := newDuplicateFixture()
	delete(repo.texts, "E")
	uc := NewDuplicateDetectionUseCase(repo, nil, nil, nil, DuplicateDetectionOptions{})

	scan, err := uc.ScanDuplicates(context.Background(), 100, 0.7)
	require.NoError(t, err)

	pairs := pairsByKey(scan)
	assert.Len(t, pairs, 2)
	assert.Contains(t, pairs, "A-B")
	assert.Contains(t, pairs, "C-D")
}

func TestScanDuplicates_Validation(t *testing.T) {
	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), nil, nil, nil, DuplicateDetectionOptions{})

	for _, tc := range []struct{ threshold, minScore float64 }{{-1, 0.7}, {100, 1.5}, {100, -0.1}} {
		_, err := uc.ScanDuplicates(context.Background(), tc.threshold, tc.minScore)
		var vErr *model.ValidationError
		assert.True(t, errors.As(err, &vErr), "threshold=%v minScore=%v", tc.threshold, tc.minScore)
	}
}

func TestScanDuplicates_CancelledContext(t *testing.T) {
	var calls int32
	comparer := comparerFunc(func(ctx context.Context, a, b model.ReportText) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "0.9", nil
	})
	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), comparer, nil, nil,
		DuplicateDetectionOptions{MaxConcurrency: 2, RequestsPerSecond: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.ScanDuplicates(ctx, 100, 0.7)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestScanDuplicates_SaveFailure(t *testing.T) {
	scanRepo := new(mockScanRepository)
	scanRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("firestore unavailable"))

	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), nil, scanRepo, nil, DuplicateDetectionOptions{})
	_, err := uc.ScanDuplicates(context.Background(), 100, 0.7)
	assert.Error(t, err)
}

func TestGetScan(t *testing.T) {
	scanRepo := new(mockScanRepository)
	scanRepo.On("Get", mock.Anything, "scan-1").Return(&model.DuplicateScan{ID: "scan-1"}, nil)
	scanRepo.On("Get", mock.Anything, "gone").Return(nil, model.ErrScanNotFound)

	uc := NewDuplicateDetectionUseCase(newDuplicateFixture(), nil, scanRepo, nil, DuplicateDetectionOptions{})

	scan, err := uc.GetScan(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, "scan-1", scan.ID)

	_, err = uc.GetScan(context.Background(), "gone")
	assert.ErrorIs(t, err, model.ErrScanNotFound)

	_, err = NewDuplicateDetectionUseCase(newDuplicateFixture(), nil, nil, nil, DuplicateDetectionOptions{}).GetScan(context.Background(), "scan-1")
	assert.ErrorIs(t, err, model.ErrNotConfigured)
}
