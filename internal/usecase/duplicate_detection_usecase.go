package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"urban-pulse/internal/domain/helper"
	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/domain/service"
	"urban-pulse/internal/metrics"
	"urban-pulse/internal/platform/obs"
)

type DuplicateDetectionUseCase interface {
	// ScanDuplicates は近接クラスタ内のレポート組をモデルで比較し、結果を保存して返す
	ScanDuplicates(ctx context.Context, thresholdMeters, minScore float64) (*model.DuplicateScan, error)

	// GetScan は保存済みのスキャン結果を取得する
	GetScan(ctx context.Context, scanID string) (*model.DuplicateScan, error)
}

// DuplicateDetectionOptions モデル呼び出しの並行数とレート制限
type DuplicateDetectionOptions struct {
	MaxConcurrency    int
	RequestsPerSecond float64
}

// duplicateDetectionUseCaseImpl はDuplicateDetectionUseCaseの実装
type duplicateDetectionUseCaseImpl struct {
	reportsRepo repository.ReportsRepository
	comparer    repository.ReportComparisonRepository
	scanRepo    repository.DuplicateScanRepository
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	workers     int
	now         func() time.Time
}

// NewDuplicateDetectionUseCase は新しいDuplicateDetectionUseCaseインスタンスを作成
// comparer が nil の場合は比較せずに組を列挙するだけのドライランになる
// scanRepo が nil の場合は結果を保存しない
func NewDuplicateDetectionUseCase(
	reportsRepo repository.ReportsRepository,
	comparer repository.ReportComparisonRepository,
	scanRepo repository.DuplicateScanRepository,
	m *metrics.Metrics,
	opts DuplicateDetectionOptions,
) DuplicateDetectionUseCase {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &duplicateDetectionUseCaseImpl{
		reportsRepo: reportsRepo,
		comparer:    comparer,
		scanRepo:    scanRepo,
		metrics:     m,
		limiter:     rate.NewLimiter(limit, 1),
		workers:     opts.MaxConcurrency,
		now:         time.Now,
	}
}

// pairJob クラスタ内の比較対象1組
type pairJob struct {
	cluster int
	pair    int
	a, b    model.ReportText
}

func (u *duplicateDetectionUseCaseImpl) ScanDuplicates(ctx context.Context, thresholdMeters, minScore float64) (scan *model.DuplicateScan, err error) {
	defer obs.Time(ctx, "duplicates.scan")(&err)

	if minScore < 0 || minScore > 1 {
		return nil, &model.ValidationError{Field: "min_score", Message: "0から1の範囲で指定してください"}
	}
	clusterer, err := service.NewProximityClusterer(thresholdMeters, model.DefaultClusterMinGroupSize)
	if err != nil {
		return nil, err
	}

	points, err := u.reportsRepo.GetCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("座標の取得失敗: %w", err)
	}
	clusters := clusterer.Cluster(points)
	u.metrics.ObserveClusters(len(clusters))

	dryRun := u.comparer == nil
	log.Printf("🚀 重複スキャン開始: %d件のレポート, %d個のクラスタ (threshold=%.0fm, dryRun=%t)", len(points), len(clusters), thresholdMeters, dryRun)

	scan = &model.DuplicateScan{
		ID:              uuid.New().String(),
		ThresholdMeters: thresholdMeters,
		MinScore:        minScore,
		DryRun:          dryRun,
		Clusters:        make([]model.DuplicateCluster, len(clusters)),
		CreatedAt:       u.now().UTC(),
	}

	var jobs []pairJob
	for ci, cluster := range clusters {
		ids := cluster.MemberIDs()
		texts, err := u.reportsRepo.GetTexts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("クラスタ%dのレポート本文取得失敗: %w", ci+1, err)
		}
		byID := make(map[string]model.ReportText, len(texts))
		for _, t := range texts {
			byID[t.ID] = t
		}

		dc := model.DuplicateCluster{
			Center:    cluster.Center,
			MemberIDs: ids,
			Pairs:     []model.PairComparison{},
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, okA := byID[ids[i]]
				b, okB := byID[ids[j]]
				// 座標取得後に削除されたレポートは比較しない
				if !okA || !okB {
					continue
				}
				pc := model.PairComparison{ReportA: a.ID, ReportB: b.ID}
				if dryRun {
					pc.Status = model.PairStatusDryRun
				} else {
					jobs = append(jobs, pairJob{cluster: ci, pair: len(dc.Pairs), a: a, b: b})
				}
				dc.Pairs = append(dc.Pairs, pc)
			}
		}
		scan.Clusters[ci] = dc
	}

	if !dryRun && len(jobs) > 0 {
		log.Printf("🤖 %d組のレポートをモデルで比較中 (並行数=%d)", len(jobs), u.workers)
		if err := u.compareAll(ctx, scan, jobs); err != nil {
			return nil, err
		}
	}

	if u.scanRepo != nil {
		if err := u.scanRepo.Save(ctx, scan); err != nil {
			return nil, fmt.Errorf("重複スキャンの保存失敗: %w", err)
		}
	}

	log.Printf("✅ 重複スキャン完了: %s (%d組)", scan.ID, len(jobs))
	return scan, nil
}

// compareAll は各組を並行に比較する。1組の失敗はその組の error として記録し、スキャン全体は止めない
func (u *duplicateDetectionUseCaseImpl) compareAll(ctx context.Context, scan *model.DuplicateScan, jobs []pairJob) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			pc := &scan.Clusters[job.cluster].Pairs[job.pair]
			u.comparePair(gctx, pc, job.a, job.b, scan.MinScore)
			u.metrics.LLMComparison(string(pc.Status))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("重複スキャンが中断されました: %w", err)
	}
	return nil
}

func (u *duplicateDetectionUseCaseImpl) comparePair(ctx context.Context, pc *model.PairComparison, a, b model.ReportText, minScore float64) {
	if err := u.limiter.Wait(ctx); err != nil {
		pc.Status = model.PairStatusError
		pc.Error = err.Error()
		return
	}

	reply, err := u.comparer.CompareReports(ctx, a, b)
	if err != nil {
		log.Printf("⚠️ Pair %s vs %s: %v", a.ID, b.ID, err)
		pc.Status = model.PairStatusError
		pc.Error = err.Error()
		return
	}

	score, ok := helper.ParseScore(reply)
	if !ok {
		pc.Status = model.PairStatusUnparsed
		return
	}
	pc.Score = &score
	if score >= minScore {
		pc.Status = model.PairStatusMatch
	} else {
		pc.Status = model.PairStatusNoMatch
	}
}

func (u *duplicateDetectionUseCaseImpl) GetScan(ctx context.Context, scanID string) (*model.DuplicateScan, error) {
	if u.scanRepo == nil {
		return nil, fmt.Errorf("スキャン結果の保存先: %w", model.ErrNotConfigured)
	}
	return u.scanRepo.Get(ctx, scanID)
}
