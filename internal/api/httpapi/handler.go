package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maize-vision/internal/domain/entity"
)

const (
	msgWelcome       = "Welcome! The API is running."
	msgFileRequired  = "file is required"
	msgInvalidImage  = "uploaded file is not a valid image"
	msgInternalError = "internal server error"
	msgNotFound      = "analysis not found"

	defaultHistoryPage = 20
)

// Diagnoser сервис диагностики, который обслуживает HTTP API
type Diagnoser interface {
	Diagnose(ctx context.Context, data []byte, source entity.Source) (*entity.Analysis, error)
	Get(ctx context.Context, id string) (*entity.Analysis, error)
	History(ctx context.Context, limit int) ([]*entity.Analysis, error)
}

type Handler struct {
	svc     Diagnoser
	log     *zap.Logger
	maxSize int64
}

func NewHandler(svc Diagnoser, log *zap.Logger, maxSize int64) *Handler {
	return &Handler{svc: svc, log: log, maxSize: maxSize}
}

// Root приветствие, по нему фронтенд проверяет, что API запущен
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": msgWelcome})
}

// Health проверка живости
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Predict принимает изображение в поле file и возвращает диагноз
func (h *Handler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(c)
			return
		}
		h.log.Debug("failed to get uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgFileRequired})
		return
	}
	if file.Size > h.maxSize {
		h.tooLarge(c)
		return
	}

	data, err := readUpload(file, h.maxSize)
	if err != nil {
		h.log.Warn("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgFileRequired})
		return
	}

	analysis, err := h.svc.Diagnose(c.Request.Context(), data, entity.SourceHTTP)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidImage) {
			h.log.Info("rejected upload", zap.String("filename", file.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidImage})
			return
		}
		h.log.Error("prediction failed",
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
		return
	}

	c.JSON(http.StatusOK, newPredictResponse(analysis))
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Error: fmt.Sprintf("file exceeds %d MB limit", h.maxSize/(1024*1024)),
	})
}

// GetAnalysis возвращает анализ по ID вместе с изображением подсветки
func (h *Handler) GetAnalysis(c *gin.Context) {
	analysis, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
			return
		}
		h.log.Error("failed to get analysis", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
		return
	}

	c.JSON(http.StatusOK, newAnalysisResponse(analysis, true))
}

// ListAnalyses возвращает последние анализы без изображений
func (h *Handler) ListAnalyses(c *gin.Context) {
	limit := defaultHistoryPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	analyses, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to list analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
		return
	}

	out := make([]AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, newAnalysisResponse(a, false))
	}
	c.JSON(http.StatusOK, gin.H{"analyses": out})
}

func readUpload(file *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("upload exceeds %d bytes", limit)
	}
	return data, nil
}
