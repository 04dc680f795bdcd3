package server

import (
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/corpus"
	"github.com/maganghub-tools/mh-finder/internal/logger"
	"github.com/maganghub-tools/mh-finder/internal/maganghub"
	"github.com/maganghub-tools/mh-finder/internal/query"
	"github.com/maganghub-tools/mh-finder/internal/ranking"
)

//go:embed templates/filter.html
var templatesFS embed.FS

var filterTemplate = template.Must(template.ParseFS(templatesFS, "templates/filter.html"))

type filterPage struct {
	Query        string
	Prov         string
	Mode         string
	Limit        string
	Kabupaten    string
	ProgramStudi string
	Government   string
	Error        string
	Results      []resultRow
	Total        int
	ProvChoices  []string
	KabChoices   []string
	GovChoices   []string
}

type resultRow struct {
	Posisi       string
	Perusahaan   string
	Kabupaten    string
	Provinsi     string
	ProgramStudi string
	Jenjang      string
	Kuota        string
	Terdaftar    string
	AcceptPct    string
}

// handleFilter renders the filter page. A free-text query runs first when
// present; structured filters are applied on top of it, or against the whole
// corpus when the query is empty.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page := filterPage{
		Query:        strings.TrimSpace(params.Get("q")),
		Prov:         strings.TrimSpace(params.Get("prov")),
		Mode:         strings.TrimSpace(params.Get("mode")),
		Limit:        strings.TrimSpace(params.Get("limit")),
		Kabupaten:    strings.TrimSpace(params.Get("kabupaten")),
		ProgramStudi: strings.TrimSpace(params.Get("program_studi")),
		Government:   strings.TrimSpace(params.Get("gov")),
	}
	if page.Prov == "" {
		page.Prov = s.cfg.DefaultProvince
	}
	if page.Mode == "" {
		page.Mode = "and"
	}

	page.ProvChoices = s.provinceChoices()

	mode, err := query.ParseMode(page.Mode)
	if err != nil {
		mode = query.ModeAll
	}
	presence, err := query.ParsePresence(page.Government)
	if err != nil {
		presence = query.PresenceEither
	}
	limit := 0
	if n, err := strconv.Atoi(page.Limit); err == nil && n > 0 {
		limit = n
	}

	reader, err := corpus.NewReader(filepath.Join(s.cfg.DataRoot, page.Prov), s.logger)
	if err != nil {
		page.Error = err.Error()
		s.render(w, page)
		return
	}

	structured := query.Structured{
		KabupatenTokens:    query.Tokenize(page.Kabupaten),
		ProgramStudiTokens: query.Tokenize(page.ProgramStudi),
		Government:         presence,
	}

	var results []maganghub.Record
	if page.Query != "" {
		results = s.engine.FreeText(reader.Records(), query.Tokenize(page.Query), mode, 0)
		results = s.engine.Structured(slices.Values(results), structured, limit)
	} else {
		results = s.engine.Structured(reader.Records(), structured, limit)
	}

	page.KabChoices, page.GovChoices = collectChoices(reader)
	page.Total = len(results)
	page.Results = make([]resultRow, 0, len(results))
	for _, rec := range results {
		page.Results = append(page.Results, buildRow(rec))
	}

	s.logger.Debug("filter page",
		zap.String("q", logger.TruncateForLog(page.Query, 80)),
		zap.String("prov", page.Prov),
		zap.Int("results", page.Total),
	)

	s.render(w, page)
}

func (s *Server) render(w http.ResponseWriter, page filterPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := filterTemplate.Execute(w, page); err != nil {
		s.logger.Error("rendering filter page", zap.Error(err))
	}
}

func (s *Server) provinceChoices() []string {
	dirs, err := corpus.ProvinceDirs(s.cfg.DataRoot)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		names = append(names, filepath.Base(dir))
	}
	return names
}

// collectChoices gathers the kabupaten and government-agency names present
// in the corpus for the filter dropdowns.
func collectChoices(reader *corpus.Reader) (kab, gov []string) {
	kabSet := make(map[string]struct{})
	govSet := make(map[string]struct{})
	for rec := range reader.Records() {
		if name := rec.Company().NamaKabupaten; name != "" {
			kabSet[name] = struct{}{}
		}
		for _, name := range rec.GovernmentNames() {
			govSet[name] = struct{}{}
		}
	}
	for name := range kabSet {
		kab = append(kab, name)
	}
	for name := range govSet {
		gov = append(gov, name)
	}
	sort.Strings(kab)
	sort.Strings(gov)
	return kab, gov
}

func buildRow(rec maganghub.Record) resultRow {
	cp := rec.Company()
	return resultRow{
		Posisi:       rec.String("posisi"),
		Perusahaan:   cp.NamaPerusahaan,
		Kabupaten:    cp.NamaKabupaten,
		Provinsi:     cp.NamaProvinsi,
		ProgramStudi: strings.Join(maganghub.ResolveProgramStudi(rec["program_studi"]), ", "),
		Jenjang:      strings.Join(maganghub.ResolveLevels(rec["jenjang"]), ", "),
		Kuota:        intOrDash(rec.Int("jumlah_kuota")),
		Terdaftar:    intOrDash(rec.Int("jumlah_terdaftar")),
		AcceptPct:    ranking.AcceptPercent(rec),
	}
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
