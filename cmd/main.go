package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"maize-vision/config"
	"maize-vision/internal/api/httpapi"
	"maize-vision/internal/api/telegram"
	app "maize-vision/internal/application"
	"maize-vision/internal/container"
	"maize-vision/internal/domain/port"
	"maize-vision/internal/infrastructure/imageio"
	"maize-vision/internal/infrastructure/inference"
	"maize-vision/internal/infrastructure/storage"
	"maize-vision/internal/infrastructure/vision"
	"maize-vision/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Модели загружаются один раз; без них сервис не стартует
	models, err := inference.LoadModels(modelsConfig(cfg.Models))
	if err != nil {
		zl.Fatal("failed to load models", zap.Error(err))
	}
	defer func() {
		if err := models.Close(); err != nil {
			zl.Warn("failed to release models", zap.Error(err))
		}
	}()
	zl.Info("models loaded",
		zap.String("classifier", cfg.Models.ClassifierPath),
		zap.String("segmenter", cfg.Models.SegmenterPath),
		zap.String("sam_encoder", cfg.Models.SAMEncoderPath),
		zap.String("sam_decoder", cfg.Models.SAMDecoderPath))

	cache := newResultCache(ctx, cfg.Redis, zl)
	if closer, ok := cache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	userRepo := storage.NewMemoryUserRepository()
	analyses := storage.NewMemoryAnalysisRepository(cfg.History.Limit)

	pipeline := app.Pipeline{
		Decoder:    imageio.NewDecoder(cfg.Models.InputSize),
		Classifier: models.Classifier,
		Coarse:     models.Segmenter,
		Boxes:      vision.NewBoxExtractor(),
		Refined:    models.SAM,
		Leaf:       vision.NewLeafMasker(),
		Overlay:    vision.NewOverlayRenderer(),
	}

	appContainer := container.New(userRepo, analyses, cache, pipeline, zl)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Mode:           cfg.Server.Mode,
		MaxUploadSize:  cfg.Upload.MaxSize,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, appContainer.DiagnosisService, zl)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var wg sync.WaitGroup

	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, appContainer.UserService, appContainer.DiagnosisService, zl, cfg.Upload.MaxSize)
		if err != nil {
			zl.Fatal("failed to create bot", zap.Error(err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			zl.Info("bot is running")
			if err := bot.Run(ctx); err != nil {
				zl.Error("bot stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Info("TELEGRAM_TOKEN is not set, bot disabled")
	}

	go func() {
		zl.Info("http server is running", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server shutdown", zap.Error(err))
	}
	wg.Wait()
}

func modelsConfig(m config.ModelsConfig) inference.ModelsConfig {
	return inference.ModelsConfig{
		LibraryPath: m.LibraryPath,
		Classifier: inference.SessionConfig{
			ModelPath:  m.ClassifierPath,
			InputName:  m.ClassifierInput,
			OutputName: m.ClassifierOutput,
			InputSize:  m.InputSize,
			Threads:    m.Threads,
		},
		Segmenter: inference.SessionConfig{
			ModelPath:  m.SegmenterPath,
			InputName:  m.SegmenterInput,
			OutputName: m.SegmenterOutput,
			InputSize:  m.InputSize,
			Threads:    m.Threads,
		},
		SAM: inference.SAMConfig{
			EncoderPath:   m.SAMEncoderPath,
			DecoderPath:   m.SAMDecoderPath,
			EncoderInput:  m.SAMEncoderInput,
			EncoderOutput: m.SAMEncoderOutput,
			Threads:       m.Threads,
		},
	}
}

// newResultCache подключает Redis, если он включён и отвечает; иначе кэш отключён
func newResultCache(ctx context.Context, cfg config.RedisConfig, zl *zap.Logger) port.ResultCache {
	if !cfg.Enabled {
		return storage.NoopResultCache{}
	}

	cache := storage.NewRedisResultCache(storage.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err := cache.Ping(ctx); err != nil {
		zl.Warn("redis is unavailable, result cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = cache.Close()
		return storage.NoopResultCache{}
	}

	zl.Info("redis result cache enabled", zap.String("addr", cfg.Addr))
	return cache
}
