// Package httpx holds the JSON answers of the operational endpoints; pages
// render HTML through internal/view instead.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 body.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func write(w http.ResponseWriter, contentType string, status int, body any) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes body with status; operational answers are never cached.
func JSON(w http.ResponseWriter, status int, body any) {
	write(w, "application/json", status, body)
}

// Fail writes a problem document titled after status.
func Fail(w http.ResponseWriter, status int, detail string) {
	write(w, "application/problem+json", status, Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
