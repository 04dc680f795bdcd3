// Package query evaluates free-text and structured searches over vacancy
// records with a single linear scan per query.
package query

import (
	"fmt"
	"strings"
)

// Mode selects how free-text tokens combine.
type Mode int

const (
	// ModeAll keeps a record only when every token matches.
	ModeAll Mode = iota
	// ModeAny keeps a record when at least one token matches.
	ModeAny
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "all":
		return ModeAll, nil
	case "or", "any":
		return ModeAny, nil
	}
	return ModeAll, fmt.Errorf("invalid mode %q: want \"and\" or \"or\"", s)
}

// Presence is the tri-state government-agency predicate.
type Presence int

const (
	// PresenceEither accepts every record.
	PresenceEither Presence = iota
	// PresencePresent keeps only records with a government agency or
	// sub-agency name.
	PresencePresent
	// PresenceAbsent keeps the exact complement of PresencePresent.
	PresenceAbsent
)

func ParsePresence(s string) (Presence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "either", "2":
		return PresenceEither, nil
	case "present", "1":
		return PresencePresent, nil
	case "absent", "0":
		return PresenceAbsent, nil
	}
	return PresenceEither, fmt.Errorf("invalid government presence %q: want \"present\", \"absent\" or \"either\"", s)
}

// Tokenize splits a query string on whitespace into lowercased tokens.
func Tokenize(q string) []string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}
