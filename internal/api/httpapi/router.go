package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig параметры HTTP-слоя
type RouterConfig struct {
	Mode           string
	MaxUploadSize  int64
	AllowedOrigins []string
}

// NewRouter собирает gin-движок со всеми маршрутами
func NewRouter(cfg RouterConfig, svc Diagnoser, log *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger(log))
	r.Use(CORS(cfg.AllowedOrigins))
	r.MaxMultipartMemory = cfg.MaxUploadSize + 1<<20

	h := NewHandler(svc, log, cfg.MaxUploadSize)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)

	api := r.Group("/api/v1")
	{
		api.POST("/predict", h.Predict)
		api.GET("/analyses", h.ListAnalyses)
		api.GET("/analyses/:id", h.GetAnalysis)
	}

	return r
}
