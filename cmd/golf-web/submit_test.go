package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terra-clan/code-golf/internal/config"
	"github.com/terra-clan/code-golf/internal/models"
)

func golfAPI(t *testing.T, result models.SubmitResult, got *models.SubmitRequest) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submit" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(srv.Close)

	return &config.Config{
		API:     config.APIConfig{URL: srv.URL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{FileLimit: 1 << 10},
	}
}

func solution(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fizz.py")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSubmitPass(t *testing.T) {
	var got models.SubmitRequest
	cfg := golfAPI(t, models.SubmitResult{State: models.ResultPass}, &got)

	var out bytes.Buffer
	opts := submitOptions{challenge: "FizzBuzz", lang: "python", name: " alice ", file: solution(t, "print(1)")}
	if err := submit(context.Background(), cfg, opts, &out); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	want := models.SubmitRequest{Name: "alice", Code: "print(1)", Challenge: "FizzBuzz", Lang: "python"}
	if got != want {
		t.Errorf("expected request %+v, got %+v", want, got)
	}
	if !strings.Contains(out.String(), "Passed all test cases with a 8 bytes solution!") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSubmitFail(t *testing.T) {
	var got models.SubmitRequest
	cfg := golfAPI(t, models.SubmitResult{
		State: models.ResultFail,
		Results: []models.TestCaseResult{
			{Name: "one", State: models.CasePass},
			{Name: "two", State: models.CaseFail, Input: "2", Output: "3", ExpectedOutput: "4"},
		},
	}, &got)

	var out bytes.Buffer
	opts := submitOptions{challenge: "FizzBuzz", lang: "python", name: "bob", file: solution(t, "x")}
	if err := submit(context.Background(), cfg, opts, &out); err == nil {
		t.Fatal("expected an error for a failing submission")
	}
	if !strings.Contains(out.String(), "Failed 1 of 2 test cases") || !strings.Contains(out.String(), "two (fail)") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSubmitChecksBeforeSending(t *testing.T) {
	var got models.SubmitRequest
	cfg := golfAPI(t, models.SubmitResult{State: models.ResultPass}, &got)

	tests := []struct {
		name string
		opts submitOptions
	}{
		{"blank name", submitOptions{name: "  ", file: solution(t, "x")}},
		{"missing file", submitOptions{name: "bob", file: filepath.Join(t.TempDir(), "nope.py")}},
		{"too large", submitOptions{name: "bob", file: solution(t, strings.Repeat("x", 2<<10))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := submit(context.Background(), cfg, tt.opts, &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if got != (models.SubmitRequest{}) {
		t.Errorf("rejected submission reached the API: %+v", got)
	}
}
