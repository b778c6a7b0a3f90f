package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pocket-ledger/pkg/config"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

var supportedFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// OCRService turns an uploaded receipt into plain text. Images go through
// Tesseract, PDFs with an embedded text layer are read with MuPDF.
type OCRService struct {
	languages []string
	logger    *zap.Logger
}

func NewOCRService(cfg *config.OCRConfig, logger *zap.Logger) *OCRService {
	return &OCRService{
		languages: cfg.Languages,
		logger:    logger,
	}
}

// SupportedFormat reports whether a file name has an extension the OCR
// service can read.
func SupportedFormat(fileName string) bool {
	return supportedFormats[strings.ToLower(filepath.Ext(fileName))]
}

// ExtractText extracts text from an image or PDF file.
// An empty result is an error: there is nothing for the receipt parser to read.
func (s *OCRService) ExtractText(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if !supportedFormats[ext] {
		return "", fmt.Errorf("unsupported file format: %s (supported: jpg, jpeg, png, webp, pdf)", ext)
	}

	var (
		text   string
		err    error
		method string
	)
	if ext == ".pdf" {
		method = "go-fitz"
		text, err = s.extractTextFromPDF(filePath)
	} else {
		method = "tesseract"
		text, err = s.extractTextFromImage(filePath)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(sanitizeUTF8(text))

	s.logger.Info("OCR extraction completed",
		zap.String("file", filepath.Base(filePath)),
		zap.String("method", method),
		zap.Int("text_length", len(text)),
	)

	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", filepath.Base(filePath))
	}
	return text, nil
}

func (s *OCRService) extractTextFromImage(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(s.languages) > 0 {
		if err := client.SetLanguage(s.languages...); err != nil {
			return "", fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize image: %w", err)
	}
	return text, nil
}

func (s *OCRService) extractTextFromPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
