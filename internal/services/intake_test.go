package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIntakeService_FromBase64(t *testing.T) {
	intake := NewIntakeService(16)
	encoded := base64.StdEncoding.EncodeToString([]byte("hello rubric"))

	file, err := intake.FromBase64(encoded, "rubric.txt")
	if err != nil {
		t.Fatalf("FromBase64 returned error: %v", err)
	}
	if string(file.Data) != "hello rubric" {
		t.Errorf("data = %q", file.Data)
	}
	if file.ContentType != "text/plain" {
		t.Errorf("content type = %q", file.ContentType)
	}
	if file.Size() != int64(len("hello rubric")) {
		t.Errorf("size = %d", file.Size())
	}
}

func TestIntakeService_FromBase64DataURL(t *testing.T) {
	intake := NewIntakeService(1024)
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
	// Line-wrapped payloads are common when clients encode large files.
	wrapped := payload[:8] + "\n" + payload[8:]

	file, err := intake.FromBase64("data:application/pdf;base64,"+wrapped, "essay.pdf")
	if err != nil {
		t.Fatalf("FromBase64 returned error: %v", err)
	}
	if string(file.Data) != "%PDF-1.4 fake" {
		t.Errorf("data = %q", file.Data)
	}
	if file.ContentType != "application/pdf" {
		t.Errorf("content type = %q", file.ContentType)
	}
}

func TestIntakeService_FromBase64Errors(t *testing.T) {
	intake := NewIntakeService(16)

	tests := []struct {
		name       string
		encoded    string
		filename   string
		wantStatus int
		wantErr    error
	}{
		{
			name:       "unsupported extension",
			encoded:    base64.StdEncoding.EncodeToString([]byte("x")),
			filename:   "image.png",
			wantStatus: http.StatusBadRequest,
			wantErr:    ErrUnsupportedFormat,
		},
		{
			name:       "invalid base64",
			encoded:    "!!!not base64!!!",
			filename:   "essay.txt",
			wantStatus: http.StatusBadRequest,
			wantErr:    ErrInvalidPayload,
		},
		{
			name:       "empty payload",
			encoded:    "data:text/plain;base64,",
			filename:   "essay.txt",
			wantStatus: http.StatusBadRequest,
			wantErr:    ErrEmptyFile,
		},
		{
			name:       "too large",
			encoded:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), 17)),
			filename:   "essay.txt",
			wantStatus: http.StatusRequestEntityTooLarge,
			wantErr:    ErrFileTooLarge,
		},
		{
			name:       "far too large",
			encoded:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), 64)),
			filename:   "essay.txt",
			wantStatus: http.StatusRequestEntityTooLarge,
			wantErr:    ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := intake.FromBase64(tt.encoded, tt.filename)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if status := AsAppError(err).Status; status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestIntakeService_FromMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("pdfFile", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("multipart content")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	defer form.RemoveAll()

	header := form.File["pdfFile"][0]

	file, err := NewIntakeService(1024).FromMultipart(header)
	if err != nil {
		t.Fatalf("FromMultipart returned error: %v", err)
	}
	if string(file.Data) != "multipart content" || file.Filename != "notes.txt" {
		t.Errorf("unexpected file %q %q", file.Filename, file.Data)
	}

	_, err = NewIntakeService(4).FromMultipart(header)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestIntakeService_FromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "essay.txt")
	if err := os.WriteFile(path, []byte("An essay."), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := NewIntakeService(1024).FromPath(path)
	if err != nil {
		t.Fatalf("FromPath returned error: %v", err)
	}
	if file.Filename != "essay.txt" || string(file.Data) != "An essay." {
		t.Errorf("unexpected file %q %q", file.Filename, file.Data)
	}

	_, err = NewIntakeService(1024).FromPath(filepath.Join(dir, "missing.txt"))
	if err == nil || AsAppError(err).Status != http.StatusBadRequest {
		t.Errorf("expected 400 for missing file, got %v", err)
	}

	_, err = NewIntakeService(1024).FromPath(filepath.Join(dir, "essay.md"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = NewIntakeService(1024).FromPath(filepath.Join(dir, "empty.txt"))
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty file error, got %v", err)
	}
}
