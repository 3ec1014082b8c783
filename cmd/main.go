package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"urban-pulse/internal/application"
	"urban-pulse/internal/bootstrap"
	"urban-pulse/internal/config"
	"urban-pulse/internal/domain/repository"
	"urban-pulse/internal/handler"
	"urban-pulse/internal/infrastructure/auth"
	"urban-pulse/internal/metrics"
	"urban-pulse/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// run はサーバーを起動し、ctx がキャンセルされるまで待ってから停止する
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込み失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("設定エラー: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	log.Println("🚀 Initializing report store...")
	store, err := bootstrap.OpenReportStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	scanRepo, closeScans, err := bootstrap.OpenScanStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeScans()

	imageStorage, err := bootstrap.OpenImageStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("画像ストレージ初期化失敗: %w", err)
	}

	verifier, err := auth.NewJWTVerifier(cfg.AuthJWTSecret)
	if err != nil {
		return fmt.Errorf("認証の初期化失敗: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// モデル未設定のときは nil インターフェースのまま渡し、ドライランにする
	var (
		comparer  repository.ReportComparisonRepository
		describer repository.DescriptionGenerationRepository
	)
	if generator := bootstrap.NewTextGenerator(cfg); generator != nil {
		comparer = generator
		describer = generator
	}

	reportService := application.NewReportService(store.Reports, m)
	duplicateUseCase := usecase.NewDuplicateDetectionUseCase(store.Reports, comparer, scanRepo, m, usecase.DuplicateDetectionOptions{
		MaxConcurrency:    cfg.LLMMaxConcurrency,
		RequestsPerSecond: cfg.LLMRequestsPerSecond,
	})
	uploadUseCase := usecase.NewUploadUseCase(imageStorage)
	descriptionUseCase := usecase.NewDescriptionUseCase(imageStorage, describer)
	geocodeUseCase := usecase.NewGeocodeUseCase(bootstrap.NewGeocoder(cfg))

	router := handler.NewRouter(handler.RouterDeps{
		Reports:    handler.NewReportsHandler(reportService, cfg.ClusterThresholdMeters, cfg.ClusterMinGroupSize),
		Duplicates: handler.NewDuplicatesHandler(duplicateUseCase, cfg.ClusterThresholdMeters),
		Uploads:    handler.NewUploadsHandler(uploadUseCase, descriptionUseCase),
		Geocode:    handler.NewGeocodeHandler(geocodeUseCase),
		Verifier:   verifier,
		Metrics:    m,
		Gatherer:   reg,
		Health:     store.Health,
	})

	// 重複スキャンはモデル呼び出しを含むため書き込みタイムアウトを長めに取る
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 urban-pulse server listening addr=:%s store=%s storage=%s", cfg.Port, cfg.ReportStore, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("サーバー起動失敗: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("⚠️ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウン失敗: %w", err)
	}
	log.Println("✅ Server stopped")
	return nil
}
