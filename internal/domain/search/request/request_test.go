package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("ultrasound texas", 0, 0, domain.DefaultSearchConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "ultrasound texas" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.PageSize() != 10 {
		t.Errorf("PageSize() = %d, want 10", r.PageSize())
	}
}

func TestNew_Invalid(t *testing.T) {
	cfg := domain.DefaultSearchConfig()
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"empty", "", "query is required"},
		{"whitespace", "  \t\n", "query is required"},
		{"too long", strings.Repeat("a", cfg.MaxQueryLength+1), "query too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, 1, 10, cfg)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 7: 7} {
		if got := ClampPage(in); got != want {
			t.Errorf("ClampPage(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{25, 25},
		{100, 100},
		{101, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.in, 100); got != tt.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFromParams_Paging(t *testing.T) {
	intp := func(v int) *int { return &v }
	tests := []struct {
		name     string
		page     *int
		size     *int
		wantPage int
		wantSize int
	}{
		{"absent", nil, nil, 1, 10},
		{"explicit zero size", nil, intp(0), 1, 1},
		{"explicit zero page", intp(0), intp(20), 1, 20},
		{"negative", intp(-4), intp(-1), 1, 1},
		{"over max", intp(3), intp(500), 3, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FromParams("ultrasound", tt.page, tt.size, domain.DefaultSearchConfig())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Page() != tt.wantPage || r.PageSize() != tt.wantSize {
				t.Errorf("page/size = %d/%d, want %d/%d", r.Page(), r.PageSize(), tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestFromParams_Invalid(t *testing.T) {
	if _, err := FromParams(" ", nil, nil, domain.DefaultSearchConfig()); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
