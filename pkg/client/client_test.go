package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terra-clan/code-golf/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestListChallenges(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/challenges" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[{"challenge":"FizzBuzz","description":"<p>desc</p>"}]`))
	})

	challenges, err := c.ListChallenges(context.Background())
	if err != nil {
		t.Fatalf("ListChallenges failed: %v", err)
	}
	if len(challenges) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(challenges))
	}
	if challenges[0].Challenge != "FizzBuzz" || challenges[0].Description != "<p>desc</p>" {
		t.Errorf("unexpected challenge: %+v", challenges[0])
	}
}

func TestGetLeaderboardEscapesQuery(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("challenge")
		w.Write([]byte(`{"python":[{"name":"a","codeSize":5}]}`))
	})

	board, err := c.GetLeaderboard(context.Background(), "Fizz Buzz&x")
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if got != "Fizz Buzz&x" {
		t.Errorf("expected challenge query 'Fizz Buzz&x', got %q", got)
	}
	top, ok := board.Top("python")
	if !ok || top.Name != "a" || top.CodeSize != 5 {
		t.Errorf("unexpected top entry: %+v (ok=%v)", top, ok)
	}
}

func TestSubmitSendsBody(t *testing.T) {
	var req models.SubmitRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submit" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.Write([]byte(`{"state":"fail","results":[{"name":"case1","state":"fail","input":"1","output":"2","expectedOutput":"1"}]}`))
	})

	res, err := c.Submit(context.Background(), models.SubmitRequest{
		Name: "alice", Code: "print(1)", Challenge: "FizzBuzz", Lang: "python",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Name != "alice" || req.Code != "print(1)" || req.Challenge != "FizzBuzz" || req.Lang != "python" {
		t.Errorf("unexpected request body: %+v", req)
	}
	if res.Passed() {
		t.Error("expected failed submission")
	}
	failures := res.Failures()
	if len(failures) != 1 || failures[0].ExpectedOutput != "1" {
		t.Errorf("unexpected failures: %+v", failures)
	}
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: ErrStatus,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
			want: ErrDecode,
		},
		{
			name: "wrong shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"challenge":"x"}`))
			},
			want: ErrDecode,
		},
		{
			name: "null list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			},
			want: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.ListChallenges(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStatusErrorCarriesCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetLeaderboard(context.Background(), "nope")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusNotFound {
		t.Errorf("expected code 404, got %d", se.Code)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL)
	srv.Close()

	_, err := c.ListLanguages(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestCancelledContextIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListLanguages(ctx)
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled network error, got %v", err)
	}
}

func TestSubmitRejectsUnknownState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state":"maybe"}`))
	})

	_, err := c.Submit(context.Background(), models.SubmitRequest{Name: "a"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
