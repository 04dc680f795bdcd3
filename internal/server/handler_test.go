package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	prov := filepath.Join(root, "prov_34")
	if err := os.Mkdir(prov, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	page := `{
		"data": [
			{
				"posisi": "Marketing Staff",
				"jumlah_kuota": 10,
				"jumlah_terdaftar": 19,
				"perusahaan": {
					"nama_perusahaan": "PT Contoh",
					"nama_kabupaten": "KAB. SLEMAN",
					"nama_provinsi": "DI YOGYAKARTA"
				},
				"government_agency": {"government_agency_name": "Kemnaker"}
			},
			{
				"posisi": "Backend Engineer",
				"perusahaan": {
					"nama_perusahaan": "PT Lain",
					"nama_kabupaten": "KAB. BANTUL",
					"nama_provinsi": "DI YOGYAKARTA"
				}
			}
		]
	}`
	if err := os.WriteFile(filepath.Join(prov, "1.json"), []byte(page), 0o644); err != nil {
		t.Fatalf("writing page: %v", err)
	}

	return New(Config{
		DataRoot:        root,
		DefaultProvince: "prov_34",
	}, nil)
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestFilterPageListsAllRecords(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := get(t, srv, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Marketing Staff", "Backend Engineer", "PT Contoh", "50.00%"} {
		if !strings.Contains(body, want) {
			t.Fatalf("response missing %q", want)
		}
	}
}

func TestFilterPageFreeTextQuery(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := get(t, srv, "/?q=sleman+marketing&mode=and")

	body := rec.Body.String()
	if !strings.Contains(body, "Marketing Staff") {
		t.Fatal("expected the marketing record")
	}
	if strings.Contains(body, "Backend Engineer") {
		t.Fatal("the backend record should have been filtered out")
	}
}

func TestFilterPageStructuredFilters(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	body := get(t, srv, "/?kabupaten=bantul").Body.String()
	if strings.Contains(body, "Marketing Staff") || !strings.Contains(body, "Backend Engineer") {
		t.Fatal("expected only the bantul record")
	}

	body = get(t, srv, "/?gov=present").Body.String()
	if !strings.Contains(body, "Marketing Staff") || strings.Contains(body, "Backend Engineer") {
		t.Fatal("expected only the government-attached record")
	}
}

func TestFilterPageUnknownProvinceShowsError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := get(t, srv, "/?prov=prov_99")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "prov_99") {
		t.Fatal("expected the error message to name the missing province")
	}
}

func TestFilterPageOffersProvinceChoices(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	if !strings.Contains(get(t, srv, "/").Body.String(), "prov_34") {
		t.Fatal("expected the province choice in the page")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := get(t, srv, "/healthz")

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := get(t, srv, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
