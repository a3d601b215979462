// Package ocr extracts text from images with the tesseract CLI.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const cmdTesseract = "tesseract"

// NewEngine creates an OCR engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Engine shells out to tesseract. Each call is independent; a failure
// only affects the attachment being processed.
type Engine struct {
	log *zap.Logger
}

// ExtractText runs OCR over raw image bytes. lang is a tesseract
// language spec such as "eng+fra"; empty means tesseract's default.
func (e *Engine) ExtractText(ctx context.Context, image []byte, lang string) (string, error) {
	tmpImg, err := os.CreateTemp("", "ocr-*.img")
	if err != nil {
		return "", fmt.Errorf("os.CreateTemp failed: %w", err)
	}
	defer func() {
		if err := tmpImg.Close(); err != nil {
			e.log.Warn("tmpImg.Close failed", zap.Error(err))
		}
		if err := os.Remove(tmpImg.Name()); err != nil {
			e.log.Warn("os.Remove failed", zap.String("path", tmpImg.Name()), zap.Error(err))
		}
	}()

	if _, err := tmpImg.Write(image); err != nil {
		return "", fmt.Errorf("tmpImg.Write failed: %w", err)
	}

	args := []string{tmpImg.Name(), "stdout"}
	if lang != "" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, cmdTesseract, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}
