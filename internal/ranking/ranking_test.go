package ranking

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

func rec(kuota, terdaftar any) maganghub.Record {
	r := maganghub.Record{}
	if kuota != nil {
		r["jumlah_kuota"] = kuota
	}
	if terdaftar != nil {
		r["jumlah_terdaftar"] = terdaftar
	}
	return r
}

func TestComputeMetrics(t *testing.T) {
	t.Parallel()

	m := Compute(rec(float64(10), float64(19)))
	if m.ApplicantsPerSlot == nil || *m.ApplicantsPerSlot != 2.0 {
		t.Fatalf("expected applicants per slot 2.0, got %v", m.ApplicantsPerSlot)
	}
	if m.AcceptanceProbability == nil || *m.AcceptanceProbability != 0.5 {
		t.Fatalf("expected acceptance probability 0.5, got %v", m.AcceptanceProbability)
	}
}

func TestComputeCapsAcceptanceAtOne(t *testing.T) {
	t.Parallel()

	m := Compute(rec(float64(5), float64(0)))
	if m.AcceptanceProbability == nil || *m.AcceptanceProbability != 1.0 {
		t.Fatalf("expected capped probability 1.0, got %v", m.AcceptanceProbability)
	}
	if m.ApplicantsPerSlot == nil || *m.ApplicantsPerSlot != 0.2 {
		t.Fatalf("expected applicants per slot 0.2, got %v", m.ApplicantsPerSlot)
	}
}

func TestComputeUndefinedCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kuota any
	}{
		{"missing kuota", nil},
		{"zero kuota", float64(0)},
		{"negative kuota", float64(-3)},
		{"non numeric kuota", "banyak"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Compute(rec(tc.kuota, float64(4)))
			if m.ApplicantsPerSlot != nil || m.AcceptanceProbability != nil {
				t.Fatalf("expected undefined metrics, got %+v", m)
			}
		})
	}
}

func TestComputeMissingTerdaftarDefaultsToZero(t *testing.T) {
	t.Parallel()

	m := Compute(rec(float64(4), nil))
	if m.ApplicantsPerSlot == nil || *m.ApplicantsPerSlot != 0.25 {
		t.Fatalf("expected applicants per slot 0.25, got %v", m.ApplicantsPerSlot)
	}
}

func TestSortByMetricMissingAlwaysLast(t *testing.T) {
	t.Parallel()

	build := func() []maganghub.Record {
		return []maganghub.Record{
			rec(nil, nil),               // undefined
			rec(float64(10), float64(19)), // accept 0.5
			rec(float64(5), float64(0)),   // accept 1.0
			rec(float64(1), float64(9)),   // accept 0.1
		}
	}

	asc := build()
	SortByMetric(asc, KeyAcceptanceProbability, Ascending)
	if AcceptPercent(asc[0]) != "10.00%" || AcceptPercent(asc[1]) != "50.00%" || AcceptPercent(asc[2]) != "100.00%" {
		t.Fatalf("unexpected ascending order: %v %v %v", AcceptPercent(asc[0]), AcceptPercent(asc[1]), AcceptPercent(asc[2]))
	}
	if AcceptPercent(asc[3]) != "-" {
		t.Fatalf("expected the undefined record last, got %v", AcceptPercent(asc[3]))
	}

	desc := build()
	SortByMetric(desc, KeyAcceptanceProbability, Descending)
	if AcceptPercent(desc[0]) != "100.00%" || AcceptPercent(desc[2]) != "10.00%" {
		t.Fatalf("unexpected descending order: %v %v %v", AcceptPercent(desc[0]), AcceptPercent(desc[1]), AcceptPercent(desc[2]))
	}
	if AcceptPercent(desc[3]) != "-" {
		t.Fatalf("expected the undefined record last, got %v", AcceptPercent(desc[3]))
	}
}

func TestSortByMetricStable(t *testing.T) {
	t.Parallel()

	records := []maganghub.Record{
		{"posisi": "first", "jumlah_kuota": float64(2), "jumlah_terdaftar": float64(1)},
		{"posisi": "second", "jumlah_kuota": float64(2), "jumlah_terdaftar": float64(1)},
		{"posisi": "third", "jumlah_kuota": float64(2), "jumlah_terdaftar": float64(1)},
	}

	SortByMetric(records, KeyApplicantsPerSlot, Descending)
	for i, want := range []string{"first", "second", "third"} {
		if got := records[i].String("posisi"); got != want {
			t.Fatalf("stability broken at %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	src := rec(float64(10), float64(19))
	src["posisi"] = "Marketing"

	out := Enrich(src)
	if out["_applicants_per_slot"] != 2.0 {
		t.Fatalf("unexpected applicants per slot: %v", out["_applicants_per_slot"])
	}
	if out["_acceptance_prob"] != 0.5 {
		t.Fatalf("unexpected acceptance prob: %v", out["_acceptance_prob"])
	}
	if out["posisi"] != "Marketing" {
		t.Fatalf("original keys must survive, got %v", out["posisi"])
	}
	if _, ok := src["_acceptance_prob"]; ok {
		t.Fatal("Enrich mutated its input")
	}

	undefined := Enrich(maganghub.Record{"posisi": "x"})
	if undefined["_acceptance_prob"] != nil || undefined["_applicants_per_slot"] != nil {
		t.Fatalf("undefined metrics must enrich as nil, got %v / %v",
			undefined["_acceptance_prob"], undefined["_applicants_per_slot"])
	}
}

func TestAcceptPercent(t *testing.T) {
	t.Parallel()

	if got := AcceptPercent(rec(float64(10), float64(19))); got != "50.00%" {
		t.Fatalf("expected 50.00%%, got %q", got)
	}
	if got := AcceptPercent(maganghub.Record{}); got != "-" {
		t.Fatalf("expected dash, got %q", got)
	}
}

func TestReportByCompany(t *testing.T) {
	t.Parallel()

	records := []maganghub.Record{
		{
			"posisi":           "Marketing",
			"jumlah_kuota":     float64(10),
			"jumlah_terdaftar": float64(19),
			"perusahaan": map[string]any{
				"nama_perusahaan": "PT Contoh",
				"id_perusahaan":   "abc",
				"nama_kabupaten":  "KAB. SLEMAN",
			},
		},
		{
			"posisi": "Admin",
			"perusahaan": map[string]any{
				"nama_perusahaan": "PT Contoh",
				"id_perusahaan":   "abc",
			},
		},
		{
			"posisi": "Kasir",
			"perusahaan": map[string]any{
				"nama_perusahaan": "PT Lain",
				"id_perusahaan":   "def",
			},
		},
	}

	report := ReportByCompany(records)
	if len(report) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(report))
	}

	contoh := report["PT Contoh (abc)"]
	if len(contoh) != 2 {
		t.Fatalf("expected 2 vacancies for PT Contoh, got %d", len(contoh))
	}
	if contoh[0]["accept"] != "50.00%" {
		t.Fatalf("unexpected accept for the first vacancy: %q", contoh[0]["accept"])
	}
	if contoh[1]["kuota"] != "-" {
		t.Fatalf("missing kuota must render as dash, got %q", contoh[1]["kuota"])
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	records := []maganghub.Record{rec(float64(10), float64(19))}

	path, err := DumpToTmpFile(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var dumped []map[string]any
	if err := json.Unmarshal(data, &dumped); err != nil {
		t.Fatalf("dump is not valid json: %v", err)
	}
	if len(dumped) != 1 {
		t.Fatalf("expected 1 record, got %d", len(dumped))
	}
	if dumped[0]["_acceptance_prob"] != 0.5 {
		t.Fatalf("expected enriched acceptance prob, got %v", dumped[0]["_acceptance_prob"])
	}
}
