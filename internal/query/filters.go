package query

import (
	"strings"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

// Filter is a single structured predicate applied per record. An inactive
// filter (no tokens, or the either presence state) never restricts the scan.
// All matching is case-insensitive substring, never whole-word.
type Filter interface {
	Name() string
	Active() bool
	Match(r maganghub.Record) bool
}

type kabupatenFilter struct {
	tokens []string
}

// NewKabupaten matches any token against the cleaned kabupaten name or the
// province name.
func NewKabupaten(tokens []string) Filter {
	return &kabupatenFilter{tokens: tokens}
}

func (f *kabupatenFilter) Name() string { return "kabupaten" }

func (f *kabupatenFilter) Active() bool { return len(f.tokens) > 0 }

func (f *kabupatenFilter) Match(r maganghub.Record) bool {
	cp := r.Company()
	kab := strings.ToLower(maganghub.CleanKabupaten(cp.NamaKabupaten))
	prov := strings.ToLower(cp.NamaProvinsi)
	for _, tok := range f.tokens {
		if strings.Contains(kab, tok) || strings.Contains(prov, tok) {
			return true
		}
	}
	return false
}

type programStudiFilter struct {
	tokens []string
}

// NewProgramStudi matches any token against each resolved program studi
// title.
func NewProgramStudi(tokens []string) Filter {
	return &programStudiFilter{tokens: tokens}
}

func (f *programStudiFilter) Name() string { return "program_studi" }

func (f *programStudiFilter) Active() bool { return len(f.tokens) > 0 }

func (f *programStudiFilter) Match(r maganghub.Record) bool {
	titles := maganghub.ResolveProgramStudi(r["program_studi"])
	for _, tok := range f.tokens {
		for _, title := range titles {
			if strings.Contains(strings.ToLower(title), tok) {
				return true
			}
		}
	}
	return false
}

type posisiFilter struct {
	tokens []string
}

// NewPosisi matches any token against the posisi field.
func NewPosisi(tokens []string) Filter {
	return &posisiFilter{tokens: tokens}
}

func (f *posisiFilter) Name() string { return "posisi" }

func (f *posisiFilter) Active() bool { return len(f.tokens) > 0 }

func (f *posisiFilter) Match(r maganghub.Record) bool {
	text := strings.ToLower(r.String("posisi"))
	for _, tok := range f.tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

type descriptionFilter struct {
	tokens []string
}

// NewDescription matches any token against the description text: position
// description and title, company description, special requirements.
func NewDescription(tokens []string) Filter {
	return &descriptionFilter{tokens: tokens}
}

func (f *descriptionFilter) Name() string { return "description" }

func (f *descriptionFilter) Active() bool { return len(f.tokens) > 0 }

func (f *descriptionFilter) Match(r maganghub.Record) bool {
	text := maganghub.DescriptionText(r)
	for _, tok := range f.tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

type governmentFilter struct {
	presence Presence
}

// NewGovernment keeps records according to the tri-state presence rule.
func NewGovernment(presence Presence) Filter {
	return &governmentFilter{presence: presence}
}

func (f *governmentFilter) Name() string { return "government" }

func (f *governmentFilter) Active() bool { return f.presence != PresenceEither }

func (f *governmentFilter) Match(r maganghub.Record) bool {
	has := r.GovernmentPresent()
	if f.presence == PresencePresent {
		return has
	}
	return !has
}
