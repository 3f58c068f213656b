package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/doc-grader/internal/models"
)

// IntakeService turns uploads into in-memory UploadedFiles. Nothing is written to disk.
type IntakeService interface {
	FromMultipart(file *multipart.FileHeader) (*models.UploadedFile, error)
	FromBase64(encoded, filename string) (*models.UploadedFile, error)
	FromPath(path string) (*models.UploadedFile, error)
	MaxFileSize() int64
}

type intakeService struct {
	maxFileSize int64
}

func NewIntakeService(maxFileSize int64) IntakeService {
	return &intakeService{
		maxFileSize: maxFileSize,
	}
}

func (s *intakeService) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *intakeService) FromMultipart(file *multipart.FileHeader) (*models.UploadedFile, error) {
	if err := s.checkName(file.Filename); err != nil {
		return nil, err
	}
	if file.Size > s.maxFileSize {
		return nil, s.tooLarge(file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return nil, NewBadRequestError("Failed to read uploaded file", fmt.Errorf("open uploaded file: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxFileSize+1))
	if err != nil {
		return nil, NewBadRequestError("Failed to read uploaded file", fmt.Errorf("read uploaded file: %w", err))
	}

	return s.build(data, file.Filename, file.Header.Get("Content-Type"))
}

func (s *intakeService) FromBase64(encoded, filename string) (*models.UploadedFile, error) {
	if err := s.checkName(filename); err != nil {
		return nil, err
	}

	payload, declaredType := splitDataURL(encoded)
	payload = stripWhitespace(payload)
	if payload == "" {
		return nil, NewBadRequestError(fmt.Sprintf("File %q is empty", filename), ErrEmptyFile)
	}

	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxFileSize+3 {
		return nil, s.tooLarge(filename)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, NewBadRequestError(fmt.Sprintf("File %q is not valid base64", filename), fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	return s.build(data, filename, declaredType)
}

func (s *intakeService) FromPath(path string) (*models.UploadedFile, error) {
	filename := filepath.Base(path)
	if err := s.checkName(filename); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, NewBadRequestError(fmt.Sprintf("Cannot read %q", path), err)
	}
	if info.Size() > s.maxFileSize {
		return nil, s.tooLarge(filename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewBadRequestError(fmt.Sprintf("Cannot read %q", path), err)
	}

	return s.build(data, filename, "")
}

func (s *intakeService) checkName(filename string) error {
	if !IsSupportedFile(filename) {
		return unsupportedFormatError(filename)
	}
	return nil
}

func (s *intakeService) build(data []byte, filename, declaredType string) (*models.UploadedFile, error) {
	if int64(len(data)) > s.maxFileSize {
		return nil, s.tooLarge(filename)
	}
	if len(data) == 0 {
		return nil, NewBadRequestError(fmt.Sprintf("File %q is empty", filename), ErrEmptyFile)
	}

	return &models.UploadedFile{
		Data:        data,
		Filename:    filename,
		ContentType: DetermineContentType(filename, declaredType),
	}, nil
}

func (s *intakeService) tooLarge(filename string) *AppError {
	return NewAppError(
		http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File %q is too large. Max size: %d bytes", filename, s.maxFileSize),
		ErrFileTooLarge,
	)
}

// splitDataURL strips a "data:<mime>;base64," prefix and returns the declared mime type.
func splitDataURL(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}

	comma := strings.Index(s, ",")
	if comma < 0 {
		return s, ""
	}

	header := strings.TrimPrefix(s[:comma], "data:")
	mimeType, _, _ := strings.Cut(header, ";")
	return s[comma+1:], mimeType
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
}

func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
