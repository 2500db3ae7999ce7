package container

import (
	"go.uber.org/zap"

	app "maize-vision/internal/application"
	"maize-vision/internal/domain/port"
)

type Container struct {
	UserService      *app.UserService
	DiagnosisService *app.DiagnosisService
}

func New(userRepo port.UserRepository, analyses port.AnalysisRepository, cache port.ResultCache, pipeline app.Pipeline, logger *zap.Logger) *Container {
	userService := app.NewUserService(userRepo)
	diagnosisService := app.NewDiagnosisService(pipeline, analyses, cache, logger)

	return &Container{
		UserService:      userService,
		DiagnosisService: diagnosisService,
	}
}
