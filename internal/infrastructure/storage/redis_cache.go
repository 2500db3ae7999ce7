package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// RedisConfig параметры подключения к Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisResultCache кэш результатов по MD5 изображения.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// cachedResult JSON-представление результата в Redis
type cachedResult struct {
	Prediction         string  `json:"prediction"`
	Confidence         float64 `json:"confidence"`
	SeverityPercentage float64 `json:"severity_percentage"`
	SeverityLabel      string  `json:"severity_label,omitempty"`
	OverlayImage       string  `json:"overlay_image,omitempty"`
}

// NewRedisResultCache создаёт клиента Redis.
func NewRedisResultCache(cfg RedisConfig) *RedisResultCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisResultCache{client: client, ttl: cfg.TTL}
}

// Ping проверяет соединение
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get возвращает результат из кэша
func (c *RedisResultCache) Get(ctx context.Context, imageMD5 string) (*entity.PredictionResult, error) {
	data, err := c.client.Get(ctx, cacheKey(imageMD5)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // промах
		}
		return nil, err
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return cached.toEntity(), nil
}

// Set сохраняет результат в кэш
func (c *RedisResultCache) Set(ctx context.Context, imageMD5 string, result *entity.PredictionResult) error {
	data, err := json.Marshal(fromEntity(result))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(imageMD5), data, c.ttl).Err()
}

// Close закрывает соединение
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

func cacheKey(imageMD5 string) string {
	return "prediction:" + imageMD5
}

func fromEntity(r *entity.PredictionResult) cachedResult {
	out := cachedResult{
		Prediction:         string(r.Prediction),
		Confidence:         r.Confidence,
		SeverityPercentage: r.SeverityPercentage,
		OverlayImage:       r.OverlayImage,
	}
	if r.SeverityLabel != nil {
		out.SeverityLabel = string(*r.SeverityLabel)
	}
	return out
}

func (c cachedResult) toEntity() *entity.PredictionResult {
	out := &entity.PredictionResult{
		Prediction:         entity.Label(c.Prediction),
		Confidence:         c.Confidence,
		SeverityPercentage: c.SeverityPercentage,
		OverlayImage:       c.OverlayImage,
	}
	if c.SeverityLabel != "" {
		label := entity.SeverityLabel(c.SeverityLabel)
		out.SeverityLabel = &label
	}
	return out
}

// NoopResultCache кэш-заглушка, когда Redis не настроен или недоступен.
type NoopResultCache struct{}

// Get всегда промах
func (NoopResultCache) Get(ctx context.Context, imageMD5 string) (*entity.PredictionResult, error) {
	return nil, nil
}

// Set ничего не делает
func (NoopResultCache) Set(ctx context.Context, imageMD5 string, result *entity.PredictionResult) error {
	return nil
}

var (
	_ port.ResultCache = (*RedisResultCache)(nil)
	_ port.ResultCache = NoopResultCache{}
)
