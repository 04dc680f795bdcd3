package query

import (
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

// Engine evaluates queries over a record sequence. Each call performs one
// linear scan; results keep corpus order (page order, then in-page order).
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// FreeText keeps records whose searchable text matches the tokens under the
// given mode. An empty token list matches nothing: an empty query yields
// zero results, and callers wanting "no restriction" must guard that case
// themselves. limit <= 0 means no cap.
func (e *Engine) FreeText(records iter.Seq[maganghub.Record], tokens []string, mode Mode, limit int) []maganghub.Record {
	if len(tokens) == 0 {
		return nil
	}

	var out []maganghub.Record
	scanned := 0
	for rec := range records {
		scanned++
		if !matchTokens(maganghub.SearchableText(rec), tokens, mode) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	e.logger.Debug("free-text scan",
		zap.Strings("tokens", tokens),
		zap.Int("scanned", scanned),
		zap.Int("matched", len(out)),
	)
	return out
}

func matchTokens(text string, tokens []string, mode Mode) bool {
	for _, tok := range tokens {
		found := strings.Contains(text, tok)
		if mode == ModeAll && !found {
			return false
		}
		if mode == ModeAny && found {
			return true
		}
	}
	return mode == ModeAll
}

// Structured holds the per-field predicates of a structured query. Tokens
// within a field are OR-combined; fields combine with AND.
type Structured struct {
	KabupatenTokens    []string
	ProgramStudiTokens []string
	PosisiTokens       []string
	DescriptionTokens  []string
	Government         Presence
}

// Filters returns the predicate steps in evaluation order.
func (s Structured) Filters() []Filter {
	return []Filter{
		NewKabupaten(s.KabupatenTokens),
		NewProgramStudi(s.ProgramStudiTokens),
		NewPosisi(s.PosisiTokens),
		NewDescription(s.DescriptionTokens),
		NewGovernment(s.Government),
	}
}

// Active reports whether any predicate restricts the scan.
func (s Structured) Active() bool {
	for _, f := range s.Filters() {
		if f.Active() {
			return true
		}
	}
	return false
}

// Structured keeps records matching every active predicate. With no active
// predicate every record is kept, which is how callers express "no
// restriction". limit <= 0 means no cap.
func (e *Engine) Structured(records iter.Seq[maganghub.Record], q Structured, limit int) []maganghub.Record {
	filters := q.Filters()
	dropped := make([]int, len(filters))

	var out []maganghub.Record
	scanned := 0
	for rec := range records {
		scanned++
		keep := true
		for i, f := range filters {
			if !f.Active() {
				continue
			}
			if !f.Match(rec) {
				dropped[i]++
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	for i, f := range filters {
		if !f.Active() {
			continue
		}
		e.logger.Debug("filter step",
			zap.String("name", f.Name()),
			zap.Int("scanned", scanned),
			zap.Int("dropped", dropped[i]),
		)
	}
	return out
}
