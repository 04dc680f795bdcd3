// Package ranking derives per-record metrics from quota and registrant
// counts and sorts results by them.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

// Key selects the metric used for sorting.
type Key string

const (
	KeyAcceptanceProbability Key = "acceptance_probability"
	KeyApplicantsPerSlot     Key = "applicants_per_slot"
)

// Direction of a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("invalid sort direction %q: want \"asc\" or \"desc\"", s)
}

// Metrics are derived per record and never persisted. A nil field means the
// metric is undefined for that record.
type Metrics struct {
	ApplicantsPerSlot     *float64
	AcceptanceProbability *float64
}

// Compute derives both metrics. They are defined only when jumlah_kuota
// parses to a positive integer; jumlah_terdaftar defaults to 0 when missing
// or unparseable. The acceptance probability is a simple random-selection
// estimate, capped at 1.0.
func Compute(r maganghub.Record) Metrics {
	kuota := r.Int("jumlah_kuota")
	if kuota == nil || *kuota <= 0 {
		return Metrics{}
	}

	terdaftar := 0
	if t := r.Int("jumlah_terdaftar"); t != nil {
		terdaftar = *t
	}

	perSlot := float64(terdaftar+1) / float64(*kuota)
	accept := math.Min(1.0, float64(*kuota)/float64(terdaftar+1))
	return Metrics{ApplicantsPerSlot: &perSlot, AcceptanceProbability: &accept}
}

func (m Metrics) value(key Key) *float64 {
	if key == KeyApplicantsPerSlot {
		return m.ApplicantsPerSlot
	}
	return m.AcceptanceProbability
}

// SortByMetric stable-sorts records in place by the chosen metric. Records
// with an undefined metric always land at the end: a descending sort uses a
// sentinel below any real value for them, an ascending sort one above.
func SortByMetric(records []maganghub.Record, key Key, dir Direction) {
	missing := math.Inf(1)
	if dir == Descending {
		missing = math.Inf(-1)
	}

	type entry struct {
		rec maganghub.Record
		val float64
	}
	entries := make([]entry, len(records))
	for i, rec := range records {
		val := missing
		if v := Compute(rec).value(key); v != nil {
			val = *v
		}
		entries[i] = entry{rec: rec, val: val}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if dir == Descending {
			return entries[i].val > entries[j].val
		}
		return entries[i].val < entries[j].val
	})

	for i, e := range entries {
		records[i] = e.rec
	}
}

// Enrich returns a copy of the record with the derived metrics attached
// under the keys used in result dumps. Undefined metrics are written as
// null.
func Enrich(r maganghub.Record) maganghub.Record {
	m := Compute(r)
	out := make(maganghub.Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	out["_applicants_per_slot"] = floatOrNil(m.ApplicantsPerSlot)
	out["_acceptance_prob"] = floatOrNil(m.AcceptanceProbability)
	return out
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// AcceptPercent formats the acceptance probability as a percentage, or "-"
// when undefined.
func AcceptPercent(r maganghub.Record) string {
	m := Compute(r)
	if m.AcceptanceProbability == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *m.AcceptanceProbability*100)
}
