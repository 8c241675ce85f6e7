package jsonio

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusNotFound, "Book not found.")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Book not found."}` {
		t.Errorf("body = %s", got)
	}
}

func TestDecode(t *testing.T) {
	var in struct {
		Titre string `json:"titre"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"titre":"Astérix"}`))
	if err := Decode(httptest.NewRecorder(), req, &in); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Titre != "Astérix" {
		t.Errorf("titre = %q", in.Titre)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := Decode(httptest.NewRecorder(), req, &in); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("empty body err = %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := Decode(httptest.NewRecorder(), req, &in); err == nil {
		t.Error("expected error on truncated JSON")
	}
}
