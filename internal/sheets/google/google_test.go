package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "paymonth/internal/sheets"
)

// fakeSheets serves the handful of Sheets v4 endpoints the client calls and
// keeps the grid in memory.
type fakeSheets struct {
	mu        sync.Mutex
	rows      [][]string
	idReads   int
	lastError string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if d := rq.DeleteDimension; d != nil {
				f.rows = append(f.rows[:d.Range.StartIndex], f.rows[d.Range.EndIndex:]...)
			}
		}
		writeJSON(w, map[string]any{})

	case strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, row := range vr.Values {
			f.rows = append(f.rows, cells(row))
		}
		writeJSON(w, map[string]any{})

	case strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		if r.Method == http.MethodGet {
			f.idReads++
			values := make([][]string, 0, len(f.rows))
			for _, row := range f.rows {
				values = append(values, []string{row[0]})
			}
			writeJSON(w, map[string]any{"range": rng, "values": values})
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n, err := rowNumber(rng)
		if err != nil {
			f.lastError = err.Error()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for len(f.rows) < n {
			f.rows = append(f.rows, nil)
		}
		f.rows[n-1] = cells(vr.Values[0])
		writeJSON(w, map[string]any{"updatedRange": rng})

	default:
		writeJSON(w, map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 0, "title": "Other"}},
				map[string]any{"properties": map[string]any{"sheetId": 7, "title": DefaultSheetName}},
			},
		})
	}
}

func (f *fakeSheets) snapshot() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.rows))
	copy(out, f.rows)
	return out
}

// rowNumber extracts n from "Sheet!An:Jn".
func rowNumber(rng string) (int, error) {
	_, cells, ok := strings.Cut(rng, "!A")
	if !ok {
		return 0, fmt.Errorf("unexpected range %q", rng)
	}
	start, _, _ := strings.Cut(cells, ":")
	return strconv.Atoi(start)
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "spreadsheet-1", ""), fake
}

func row(id, amount string) ports.Row {
	return ports.Row{
		ID:          id,
		Period:      "2025년 10월",
		Date:        "2025-10-05",
		Type:        "expense",
		Category:    "식비",
		Description: "점심",
		Amount:      amount,
	}
}

func TestUpsertRow_WritesHeaderThenAppends(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	if err := c.UpsertRow(ctx, row("t1", "9000")); err != nil {
		t.Fatalf("UpsertRow() error = %v", err)
	}
	if err := c.UpsertRow(ctx, row("t2", "4500")); err != nil {
		t.Fatalf("UpsertRow() error = %v", err)
	}

	rows := fake.snapshot()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2: %v", len(rows), rows)
	}
	if rows[0][0] != "ID" || rows[0][len(rows[0])-1] != "Tags" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "t1" || rows[2][0] != "t2" {
		t.Errorf("ids = %s, %s", rows[1][0], rows[2][0])
	}
	if rows[1][7] != "9000" {
		t.Errorf("amount cell = %q", rows[1][7])
	}
}

func TestUpsertRow_UpdatesExistingRow(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	for _, r := range []ports.Row{row("t1", "9000"), row("t2", "4500"), row("t1", "12000")} {
		if err := c.UpsertRow(ctx, r); err != nil {
			t.Fatalf("UpsertRow(%s) error = %v", r.ID, err)
		}
	}

	rows := fake.snapshot()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3: %v (last error %q)", len(rows), rows, fake.lastError)
	}
	if rows[1][0] != "t1" || rows[1][7] != "12000" {
		t.Errorf("row 2 = %v, want t1 updated to 12000", rows[1])
	}
}

func TestDeleteRow(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := c.UpsertRow(ctx, row(id, "1000")); err != nil {
			t.Fatalf("UpsertRow(%s) error = %v", id, err)
		}
	}

	if err := c.DeleteRow(ctx, "t2"); err != nil {
		t.Fatalf("DeleteRow() error = %v", err)
	}
	rows := fake.snapshot()
	if len(rows) != 3 || rows[1][0] != "t1" || rows[2][0] != "t3" {
		t.Errorf("rows after delete = %v", rows)
	}

	if err := c.DeleteRow(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing row should succeed, got %v", err)
	}
}

func TestIDColumnCache(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	if _, err := c.idColumn(ctx); err != nil {
		t.Fatalf("idColumn() error = %v", err)
	}
	if _, err := c.idColumn(ctx); err != nil {
		t.Fatalf("idColumn() error = %v", err)
	}
	if fake.idReads != 1 {
		t.Errorf("id reads = %d, want 1 while cached", fake.idReads)
	}

	c.invalidateCache()
	if _, err := c.idColumn(ctx); err != nil {
		t.Fatalf("idColumn() error = %v", err)
	}
	if fake.idReads != 2 {
		t.Errorf("id reads = %d, want 2 after invalidation", fake.idReads)
	}
}

func TestFindRow(t *testing.T) {
	ids := []string{"ID", "t1", "", "t2"}
	tests := []struct {
		id   string
		want int
	}{
		{"t1", 2},
		{"t2", 4},
		{"ID", 0},
		{"nope", 0},
	}
	for _, tt := range tests {
		if got := findRow(ids, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("expected credentials error, got %v", err)
	}
}

func TestNilServiceErrors(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: DefaultSheetName}
	if err := c.UpsertRow(context.Background(), row("t1", "1")); err == nil {
		t.Error("expected error with nil service")
	}
	if err := c.DeleteRow(context.Background(), "t1"); err == nil {
		t.Error("expected error with nil service")
	}
}
