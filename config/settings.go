package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds the environment-driven service configuration. Load it once
// in main after godotenv has populated the environment.
type Settings struct {
	Port string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueueKey      string

	SupabaseURL string
	SupabaseKey string

	KafkaBrokers []string
	KafkaTopic   string

	S3Bucket string
	S3Region string
	S3Prefix string

	VideoOutputDir   string
	WhisperModelDir  string
	WhisperModelSize string
	Language         string

	MaxFileSizeMB        int64
	MaxConcurrentWorkers int
	TaskTTL              time.Duration
	CleanupInterval      time.Duration
}

// Load reads settings from the environment, applying defaults for anything
// unset.
func Load() Settings {
	return Settings{
		Port: getenv("PORT", "8080"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASS"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		QueueKey:      getenv("QUEUE_KEY", "video_tasks"),

		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_SERVICE_KEY"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "task-events"),

		S3Bucket: strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region: strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Prefix: normalizePrefix(os.Getenv("S3_PREFIX")),

		VideoOutputDir:   getenv("VIDEO_OUTPUT_DIR", "output"),
		WhisperModelDir:  getenv("WHISPER_MODEL_DIR", ".whisper"),
		WhisperModelSize: getenv("WHISPER_MODEL_SIZE", "base"),
		Language:         getenv("TRANSCRIBE_LANGUAGE", "en"),

		MaxFileSizeMB:        int64(getenvInt("MAX_FILE_SIZE_MB", 500)),
		MaxConcurrentWorkers: getenvInt("MAX_CONCURRENT_WORKERS", 2),
		TaskTTL:              getenvDuration("TASK_TTL_HOURS", 24) * time.Hour,
		CleanupInterval:      getenvDuration("CLEANUP_INTERVAL_HOURS", 1) * time.Hour,
	}
}

// MaxFileSizeBytes returns the download size limit in bytes.
func (s Settings) MaxFileSizeBytes() int64 {
	return s.MaxFileSizeMB * 1024 * 1024
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback int) time.Duration {
	return time.Duration(getenvInt(key, fallback))
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePrefix(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	return strings.Trim(v, "/") + "/"
}
