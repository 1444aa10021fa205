package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/books", nil)
	p := Parse(r)
	if p.Page != 1 {
		t.Errorf("page: got %d, want 1", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("limit: got %d, want %d", p.Limit, DefaultLimit)
	}
}

func TestParse_Values(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"page=3&limit=25", 3, 25},
		{"page=0&limit=0", 1, DefaultLimit},
		{"page=-2&limit=-5", 1, DefaultLimit},
		{"page=abc&limit=xyz", 1, DefaultLimit},
		{"limit=5000", 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/books?"+tt.query, nil)
			p := Parse(r)
			if p.Page != tt.wantPage {
				t.Errorf("page: got %d, want %d", p.Page, tt.wantPage)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("limit: got %d, want %d", p.Limit, tt.wantLimit)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	p := Page{Page: 3, Limit: 10}
	if got := p.Skip(); got != 20 {
		t.Errorf("Skip: got %d, want 20", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}

	for _, tt := range tests {
		p := Page{Page: 1, Limit: tt.limit}
		if got := p.TotalPages(tt.total); got != tt.want {
			t.Errorf("TotalPages(%d) with limit %d = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
