package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Models   ModelsConfig   `mapstructure:"models"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	History  HistoryConfig  `mapstructure:"history"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ModelsConfig struct {
	LibraryPath      string `mapstructure:"library_path"`
	InputSize        int    `mapstructure:"input_size"`
	Threads          int    `mapstructure:"threads"`
	ClassifierPath   string `mapstructure:"classifier_path"`
	ClassifierInput  string `mapstructure:"classifier_input"`
	ClassifierOutput string `mapstructure:"classifier_output"`
	SegmenterPath    string `mapstructure:"segmenter_path"`
	SegmenterInput   string `mapstructure:"segmenter_input"`
	SegmenterOutput  string `mapstructure:"segmenter_output"`
	SAMEncoderPath   string `mapstructure:"sam_encoder_path"`
	SAMEncoderInput  string `mapstructure:"sam_encoder_input"`
	SAMEncoderOutput string `mapstructure:"sam_encoder_output"`
	SAMDecoderPath   string `mapstructure:"sam_decoder_path"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// Load читает .env, необязательный YAML-файл (CONFIG_FILE) и переменные окружения.
// Переменные окружения называются по ключу: models.classifier_path → MODELS_CLASSIFIER_PATH.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Токен бота исторически задаётся как TELEGRAM_TOKEN.
	_ = v.BindEnv("telegram.token", "TELEGRAM_TOKEN")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, без которых сервис не стартует.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive")
	}
	if c.Models.InputSize <= 0 {
		return fmt.Errorf("models.input_size must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("upload.max_size", 10*1024*1024)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("models.library_path", "")
	v.SetDefault("models.input_size", 224)
	v.SetDefault("models.threads", 0)
	v.SetDefault("models.classifier_path", "./models/mobilenet_classification_model.onnx")
	v.SetDefault("models.classifier_input", "input")
	v.SetDefault("models.classifier_output", "output")
	v.SetDefault("models.segmenter_path", "./models/unet_segmentation_model.onnx")
	v.SetDefault("models.segmenter_input", "input")
	v.SetDefault("models.segmenter_output", "output")
	v.SetDefault("models.sam_encoder_path", "./models/sam_vit_b_encoder.onnx")
	v.SetDefault("models.sam_encoder_input", "image")
	v.SetDefault("models.sam_encoder_output", "image_embeddings")
	v.SetDefault("models.sam_decoder_path", "./models/sam_vit_b_decoder.onnx")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("telegram.token", "")

	v.SetDefault("history.limit", 500)
}
