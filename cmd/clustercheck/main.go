package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"urban-pulse/internal/bootstrap"
	"urban-pulse/internal/config"
	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/domain/service"
	"urban-pulse/internal/usecase"
)

const maxPrintedClusters = 10

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込み失敗: %w", err)
	}

	fs := flag.NewFlagSet("clustercheck", flag.ContinueOnError)
	threshold := fs.Float64("threshold", cfg.ClusterThresholdMeters, "cluster distance threshold in meters")
	compare := fs.Bool("compare", false, "compare report pairs inside each cluster with the hosted model")
	minScore := fs.Float64("min-score", model.DefaultDuplicateMinScore, "minimum score to flag a pair as MATCH")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := bootstrap.OpenReportStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.Reports.GetCoordinates(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total reports: %d\n", len(points))
	if len(points) == 0 {
		return nil
	}

	if !*compare {
		clusterer, err := service.NewProximityClusterer(*threshold, model.DefaultClusterMinGroupSize)
		if err != nil {
			return err
		}
		printClusters(os.Stdout, *threshold, clusterer.Cluster(points))
		return nil
	}

	var comparer repository.ReportComparisonRepository
	if generator := bootstrap.NewTextGenerator(cfg); generator != nil {
		comparer = generator
	}
	uc := usecase.NewDuplicateDetectionUseCase(store.Reports, comparer, nil, nil, usecase.DuplicateDetectionOptions{
		MaxConcurrency:    cfg.LLMMaxConcurrency,
		RequestsPerSecond: cfg.LLMRequestsPerSecond,
	})
	scan, err := uc.ScanDuplicates(ctx, *threshold, *minScore)
	if err != nil {
		return fmt.Errorf("重複スキャン失敗: %w", err)
	}
	printScan(os.Stdout, scan)
	return nil
}

func printClusters(w io.Writer, threshold float64, clusters []model.Cluster) {
	fmt.Fprintf(w, "Clusters (>=2 members) within %gm: %d\n", threshold, len(clusters))
	for i, c := range clusters {
		if i >= maxPrintedClusters {
			break
		}
		fmt.Fprintf(w, "  Cluster %d: size=%d, ids=%s\n", i+1, len(c.Members), strings.Join(c.MemberIDs(), ", "))
	}
}

func printScan(w io.Writer, scan *model.DuplicateScan) {
	fmt.Fprintf(w, "Nearby clusters within %gm: %d\n", scan.ThresholdMeters, len(scan.Clusters))
	for i, c := range scan.Clusters {
		if i >= maxPrintedClusters {
			break
		}
		fmt.Fprintf(w, "\nCluster %d (size=%d)\n", i+1, len(c.MemberIDs))
		for _, p := range c.Pairs {
			fmt.Fprintf(w, "  %s\n", formatPair(p))
		}
	}
}

// formatPair 比較結果を1行で表す
func formatPair(p model.PairComparison) string {
	switch p.Status {
	case model.PairStatusDryRun:
		return fmt.Sprintf("Pair (dry): %s vs %s", p.ReportA, p.ReportB)
	case model.PairStatusUnparsed:
		return fmt.Sprintf("Pair: %s vs %s -> could not parse score", p.ReportA, p.ReportB)
	case model.PairStatusError:
		return fmt.Sprintf("Pair: %s vs %s -> error: %s", p.ReportA, p.ReportB, p.Error)
	}

	label := "----"
	if p.Status == model.PairStatusMatch {
		label = "MATCH"
	}
	score := 0.0
	if p.Score != nil {
		score = *p.Score
	}
	return fmt.Sprintf("Pair: %s vs %s -> score=%.2f %s", p.ReportA, p.ReportB, score, label)
}
