package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"captionforge/api"
	"captionforge/config"
	"captionforge/events"
	"captionforge/files"
	"captionforge/queue"
	"captionforge/storage"
	"captionforge/store"
	"captionforge/transcribe"
	"captionforge/worker"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	config.InitLogger()
	settings := config.Load()

	if err := os.MkdirAll(settings.VideoOutputDir, 0o755); err != nil {
		config.Log.Fatalf("cannot create output dir %s: %v", settings.VideoOutputDir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskQueue, err := queue.New(settings.RedisAddr, settings.RedisPassword, settings.RedisDB, settings.QueueKey)
	if err != nil {
		config.Log.Fatalf("redis connection failed: %v", err)
	}
	defer taskQueue.Close()

	taskStore, err := store.New(settings.SupabaseURL, settings.SupabaseKey)
	if err != nil {
		config.Log.Fatalf("task store init failed: %v", err)
	}

	processor := &worker.Processor{
		Settings: settings,
		Store:    taskStore,
		Models: transcribe.NewModelCache(func(ctx context.Context, size string) (transcribe.Transcriber, error) {
			return transcribe.NewWhisperCLI(size, settings.WhisperModelDir, settings.MaxConcurrentWorkers)
		}),
		Engine:    worker.FFmpegEngine{},
		Download:  files.Download,
		CheckDisk: files.CheckDiskSpace,
	}

	if len(settings.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(settings.KafkaBrokers, settings.KafkaTopic)
		if err != nil {
			config.Log.Fatalf("kafka producer init failed: %v", err)
		}
		defer producer.Close()
		processor.Events = producer
	} else {
		config.Log.Info("KAFKA_BROKERS unset, task events disabled")
	}

	if settings.S3Bucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{Region: settings.S3Region})
		if err != nil {
			config.Log.Fatalf("s3 client init failed: %v", err)
		}
		processor.Uploader = s3Client
	} else {
		config.Log.Info("S3_BUCKET unset, result uploads disabled")
	}

	pool := worker.NewPool(settings.MaxConcurrentWorkers, settings.MaxConcurrentWorkers*2)
	pool.Start(ctx)

	w := &worker.Worker{
		Queue:     taskQueue,
		Store:     taskStore,
		Pool:      pool,
		Processor: processor,
	}
	go w.Run(ctx)

	cleaner := &worker.Cleaner{
		Store:     taskStore,
		Queue:     taskQueue,
		OutputDir: settings.VideoOutputDir,
		TTL:       settings.TaskTTL,
		Interval:  settings.CleanupInterval,
	}
	go cleaner.Run(ctx)

	server := api.NewServer(taskStore, taskQueue, settings)
	httpServer := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: api.NewRouter(server),
	}

	go func() {
		config.Log.Infof("API server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	config.Log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		config.Log.Errorf("http shutdown: %v", err)
	}
	pool.Stop()
	config.Log.Info("shutdown complete")
}
