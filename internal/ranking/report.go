package ranking

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

// ReportByCompany groups results by company, keyed as "name (id)", with a
// short per-vacancy summary including the acceptance estimate.
func ReportByCompany(records []maganghub.Record) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, rec := range records {
		cp := rec.Company()
		key := fmt.Sprintf("%s (%s)", cp.NamaPerusahaan, cp.IDPerusahaan)
		report[key] = append(report[key], map[string]string{
			"posisi":    rec.String("posisi"),
			"kabupaten": cp.NamaKabupaten,
			"provinsi":  cp.NamaProvinsi,
			"kuota":     intOrDash(rec.Int("jumlah_kuota")),
			"terdaftar": intOrDash(rec.Int("jumlah_terdaftar")),
			"accept":    AcceptPercent(rec),
		})
	}
	return report
}

// DumpToTmpFile writes the enriched results to a temp file and returns its
// name.
func DumpToTmpFile(records []maganghub.Record) (string, error) {
	file, err := os.CreateTemp("", "vacancies_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enriched := make([]maganghub.Record, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, Enrich(rec))
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(enriched); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
