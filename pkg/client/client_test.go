package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", opts...)
}

func writeBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Train(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/nlp/train" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer admin" {
			t.Errorf("Authorization = %q", got)
		}
		writeBody(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  "Model trained successfully.",
			"version":  3,
			"records":  10,
			"rejected": 2,
		})
	}, WithAPIKey("admin"))

	res, err := c.Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !res.Success || res.Version != 3 || res.Records != 10 || res.Rejected != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/nlp/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "5" {
			t.Errorf("pageSize = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"query":"used ultrasound texas"}` {
			t.Errorf("body = %s", body)
		}
		writeBody(w, http.StatusOK, map[string]any{
			"success":     true,
			"data":        []map[string]any{{"id": 7, "name": "Ultrasound Machine", "price": 450}},
			"totalItems":  6,
			"totalPages":  2,
			"currentPage": 2,
			"pageSize":    5,
		})
	})

	res, err := c.Query(context.Background(), "used ultrasound texas", Page(2, 5))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.TotalItems != 6 || res.CurrentPage != 2 || len(res.Data) != 1 || res.Data[0].ID != 7 || res.Data[0].Price != 450 {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_Query_DefaultPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("raw query = %q, want empty", r.URL.RawQuery)
		}
		writeBody(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})

	if _, err := c.Query(context.Background(), "ultrasound", Page(0, 0)); err != nil {
		t.Fatalf("Query: %v", err)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"not trained", http.StatusConflict, `{"success":false,"code":"not_trained","message":"Model has not been trained yet."}`, ErrNotTrained, "Model has not been trained yet."},
		{"no matches", http.StatusNotFound, `{"success":false,"code":"no_matches","message":"No matches found."}`, ErrNoMatches, "No matches found."},
		{"bad request", http.StatusBadRequest, `{"success":false,"code":"bad_request","message":"Query is required."}`, ErrInvalidQuery, "Query is required."},
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"code":"unauthorized","message":"invalid API key"}`, ErrUnauthorized, "invalid API key"},
		{"train failed", http.StatusInternalServerError, `{"success":false,"code":"train_failed","message":"Model training failed."}`, ErrTrainFailed, "Model training failed."},
		{"non-json body", http.StatusBadGateway, `upstream down`, nil, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Query(context.Background(), "ultrasound")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.message {
				t.Errorf("apiErr = %+v", apiErr)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if tt.sentinel != ErrNoMatches && errors.Is(err, ErrNoMatches) {
				t.Error("unexpected ErrNoMatches match")
			}
		})
	}
}

func TestClient_Status(t *testing.T) {
	trainedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/nlp/status" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		writeBody(w, http.StatusOK, map[string]any{
			"trained":     true,
			"version":     2,
			"records":     4,
			"fingerprint": "abc",
			"trainedAt":   trainedAt,
			"lastTrain":   map[string]any{"status": "ok", "version": 2, "records": 4, "trainedAt": trainedAt},
		})
	})

	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Trained || st.Version != 2 || st.TrainedAt == nil || !st.TrainedAt.Equal(trainedAt) {
		t.Errorf("status = %+v", st)
	}
	if st.LastTrain == nil || st.LastTrain.Status != "ok" {
		t.Errorf("last train = %+v", st.LastTrain)
	}
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"healthy", http.StatusOK, `{"status":"ok","checks":{"catalog":"ok"}}`, "ok", false},
		{"degraded", http.StatusServiceUnavailable, `{"status":"degraded","checks":{"corpus":"untrained"}}`, "degraded", false},
		{"other error", http.StatusInternalServerError, `{"code":"internal_error","message":"internal error"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			h, err := c.Health(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if h.Status != tt.want {
				t.Errorf("status = %q, want %q", h.Status, tt.want)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeBody(w, http.StatusOK, map[string]any{})
	}, WithTimeout(20*time.Millisecond))

	if _, err := c.Status(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestWithHTTPClient(t *testing.T) {
	h := &http.Client{}
	c := New("http://example.invalid", WithHTTPClient(h))
	if c.http != h {
		t.Error("custom http client not used")
	}
}
