// Package handler is the serverless function for POST /api/analyze.
package handler

import (
	"net/http"

	"alfredoptarigan/doc-grader/internal/serverless"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	serverless.Handler(w, r)
}
