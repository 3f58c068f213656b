package models

import "time"

// UploadedFile lives only for the duration of one request.
type UploadedFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

func (f *UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

type AnalyzeInput struct {
	Document *UploadedFile
	// Rubric may be nil, in which case the built-in rubric is used.
	Rubric             *UploadedFile
	CustomInstructions string
}

type EvaluationRequest struct {
	DocumentText       string
	RubricText         string
	CustomInstructions string
}

type EvaluationResult struct {
	Score    string `json:"score"`
	Feedback string `json:"feedback"`
}

type ParseMethod string

const (
	ParseMethodJSON     ParseMethod = "json"
	ParseMethodRegex    ParseMethod = "regex"
	ParseMethodFallback ParseMethod = "fallback"
)

type AnalyzeMetadata struct {
	RequestID             string      `json:"requestId"`
	DocumentName          string      `json:"documentName"`
	RubricName            string      `json:"rubricName"`
	DocumentChars         int         `json:"documentChars"`
	RubricChars           int         `json:"rubricChars"`
	HasCustomInstructions bool        `json:"hasCustomInstructions"`
	Provider              string      `json:"provider"`
	Model                 string      `json:"model"`
	ParseMethod           ParseMethod `json:"parseMethod"`
	ProcessedAt           time.Time   `json:"processedAt"`
	DurationMs            int64       `json:"durationMs"`
}

type AnalyzeOutcome struct {
	Result   EvaluationResult
	Metadata AnalyzeMetadata
}

type AnalyzeResponse struct {
	Success  bool             `json:"success"`
	Result   EvaluationResult `json:"result"`
	Metadata AnalyzeMetadata  `json:"metadata"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AnalyzeJSONRequest is the base64 body accepted by the serverless function
// and by POST /api/analyze/json.
type AnalyzeJSONRequest struct {
	PDFFile            string `json:"pdfFile"`
	PDFFileName        string `json:"pdfFileName"`
	RubricFile         string `json:"rubricFile"`
	RubricFileName     string `json:"rubricFileName"`
	CustomInstructions string `json:"customInstructions"`
}
