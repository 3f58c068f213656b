package services

import (
	"log/slog"
	"path/filepath"
	"strings"

	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
)

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

var contentTypes = map[string]string{
	ExtPDF:  "application/pdf",
	ExtDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	ExtTXT:  "text/plain",
}

type TextExtractor interface {
	Extract(file *models.UploadedFile) (string, error)
}

type extractFunc func(data []byte) (string, error)

type textExtractor struct {
	handlers map[string]extractFunc
	logger   *slog.Logger
}

func NewTextExtractor(pdfParser PDFParserService, logger *slog.Logger) TextExtractor {
	if logger == nil {
		logger = applog.Discard()
	}

	e := &textExtractor{logger: logger}
	e.handlers = map[string]extractFunc{
		ExtPDF: func(data []byte) (string, error) {
			content, err := pdfParser.ExtractText(data)
			if err != nil {
				return "", err
			}
			e.logger.Debug("pdf parsed", "pages", content.PageCount)
			return content.Text, nil
		},
		ExtDOCX: ExtractDOCXText,
		ExtTXT:  DecodeText,
	}
	return e
}

// Extract picks the extractor from the filename suffix.
func (e *textExtractor) Extract(file *models.UploadedFile) (string, error) {
	handler, ok := e.handlers[fileExtension(file.Filename)]
	if !ok {
		return "", unsupportedFormatError(file.Filename)
	}

	raw, err := handler(file.Data)
	if err != nil {
		e.logger.Warn("text extraction failed", "filename", file.Filename, "error", err)
		return "", parseError(file.Filename, err)
	}

	text := CleanText(raw)
	if text == "" {
		return "", emptyDocumentError(file.Filename)
	}

	e.logger.Debug("text extracted", "filename", file.Filename, "chars", len(text))
	return text, nil
}

func IsSupportedFile(filename string) bool {
	_, ok := contentTypes[fileExtension(filename)]
	return ok
}

// DetermineContentType prefers the extension and only falls back to the
// declared type for names without a known extension.
func DetermineContentType(filename, declared string) string {
	if ct, ok := contentTypes[fileExtension(filename)]; ok {
		return ct
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}

func fileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// CleanText normalizes line endings, drops NUL bytes and trailing spaces,
// collapses runs of blank lines and trims the result.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := 0

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
