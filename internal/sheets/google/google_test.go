package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ports "transferdash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if !errors.Is(err, ports.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet-id"})
	if !errors.Is(err, ports.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got: %v", err)
	}
	if !strings.Contains(err.Error(), "GOOGLE_SERVICE_ACCOUNT_JSON") {
		t.Errorf("error should name the variables to set: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := loadCredentials(context.Background(), Options{CredentialsFile: path})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("file credentials: %q, %v", got, err)
	}

	got, err = loadCredentials(context.Background(), Options{CredentialsJSON: ` {"inline":true} `, CredentialsFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Fatalf("inline credentials should win: %q, %v", got, err)
	}

	if _, err := loadCredentials(context.Background(), Options{CredentialsFile: filepath.Join(dir, "missing.json")}); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, Options{SpreadsheetID: "sheet-id", Location: time.UTC})
}

func TestReadTransfers(t *testing.T) {
	var gotPath, gotRender string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRender = r.URL.Query().Get("valueRenderOption")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"range": "'Form Responses 1'!A1:F3",
			"majorDimension": "ROWS",
			"values": [
				["Timestamp", "Agent Name", "Transfer to:", "Customer Name:", "Electric Bill:", "Credit Score:"],
				["3/4/2024 9:00:00", "A", "X", "Jane", "120", "700"],
				["3/5/2024 9:00:00", "B", "Y"]
			]
		}`)
	})

	records, err := c.ReadTransfers(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotRender != "FORMATTED_VALUE" {
		t.Errorf("valueRenderOption = %q", gotRender)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d", len(records))
	}
	if records[0].AgentName != "A" || !records[0].Timestamp.Equal(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].CustomerName != "" {
		t.Errorf("short row should be padded: %+v", records[1])
	}
}

func TestReadTransfers_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})
	if _, err := c.ReadTransfers(context.Background()); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestReadTransfers_NilService(t *testing.T) {
	c := &Client{rng: DefaultRange}
	if _, err := c.ReadTransfers(context.Background()); err == nil {
		t.Fatal("expected error without a service")
	}
}

func TestNewWithService_Defaults(t *testing.T) {
	c := NewWithService(nil, Options{SpreadsheetID: " id "})
	if c.Range() != DefaultRange || c.spreadsheetID != "id" || c.loc != time.Local {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}
