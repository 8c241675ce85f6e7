// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
)

// RenderNotFound writes a JSON 404. An empty msg uses a generic one.
func RenderNotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Could not find this route."
	}
	jsonio.Message(w, http.StatusNotFound, msg)
}

// RenderInvalid writes a JSON 422.
func RenderInvalid(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Invalid inputs passed, please check your data."
	}
	jsonio.Message(w, http.StatusUnprocessableEntity, msg)
}

// RenderTooManyRequests is the rate limiter's limit handler.
func RenderTooManyRequests(w http.ResponseWriter, r *http.Request) {
	jsonio.Message(w, http.StatusTooManyRequests, "Too many requests, please slow down.")
}

// NotFound is the router-level 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, "")
}

// MethodNotAllowed is the router-level 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Message(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
