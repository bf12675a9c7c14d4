package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	BadGateway(rec, errors.New("moxfield returned 500"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "moxfield returned 500" || body.Code != http.StatusBadGateway {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		name      string
		pageSize  int
		total     int
		wantPages int
	}{
		{"empty", 10, 0, 1},
		{"exact", 10, 20, 2},
		{"partial", 10, 21, 3},
		{"zero page size", 0, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Paginated(rec, []string{}, 1, tt.pageSize, tt.total)

			var body PaginatedResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", body.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
