package entity

import "errors"

var (
	// ErrInvalidImage — загруженные байты не удалось прочитать как изображение.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInference — сбой на любом этапе конвейера моделей.
	ErrInference = errors.New("inference failed")
	// ErrAnalysisNotFound — анализ с таким ID отсутствует в истории.
	ErrAnalysisNotFound = errors.New("analysis not found")
	// ErrMaskSizeMismatch — маски разного размера нельзя комбинировать.
	ErrMaskSizeMismatch = errors.New("mask size mismatch")
)
