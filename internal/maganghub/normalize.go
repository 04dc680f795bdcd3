package maganghub

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Administrative prefixes stripped from kabupaten names, in replacement
// order so that the prefix+period forms are fully removed.
var kabupatenPrefixes = []string{"KAB.", "KAB", "KOTA.", "KOTA"}

// ResolveProgramStudi normalizes the program_studi wire field into an
// ordered list of titles. The field arrives either as a JSON-encoded string,
// a list of {title: ...} objects, or a list of plain strings. Malformed
// input degrades to best-effort extraction; the function never fails.
func ResolveProgramStudi(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch el := item.(type) {
			case map[string]any:
				if title, ok := stringify(el["title"]); ok && title != "" {
					out = append(out, title)
				}
			case string:
				out = append(out, el)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			// Not JSON; the whole string is a single title.
			return []string{v}
		}
		return ResolveProgramStudi(parsed)
	}
	return nil
}

// ResolveLevels normalizes the jenjang wire field into a list of level
// labels. A JSON-encoded string that parses to a list yields its stringified
// elements; a string that is not JSON is a single label on its own.
func ResolveLevels(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, asString(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return []string{v}
		}
		if list, ok := parsed.([]any); ok {
			return ResolveLevels(list)
		}
	}
	return nil
}

// CleanKabupaten strips administrative prefixes (KAB., KAB, KOTA., KOTA) and
// stray periods from a kabupaten name, as they appear in source data.
func CleanKabupaten(raw string) string {
	out := raw
	for _, prefix := range kabupatenPrefixes {
		out = strings.ReplaceAll(out, prefix, "")
	}
	out = strings.ReplaceAll(out, ".", "")
	return strings.TrimSpace(out)
}

// SearchableText flattens the record into a lowercase newline-joined blob
// used for substring matching: position, description, company fields, a
// cleaned kabupaten variant, program studi titles, and jenjang labels.
// Missing or wrong-typed fields are simply omitted.
func SearchableText(r Record) string {
	parts := make([]string, 0, 12)
	push := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	push(r.String("posisi"))
	push(r.String("deskripsi_posisi"))

	if cp := r.Map("perusahaan"); cp != nil {
		for _, key := range []string{"nama_kabupaten", "nama_provinsi", "nama_perusahaan", "alamat"} {
			push(cp.String(key))
		}
		push(CleanKabupaten(cp.String("nama_kabupaten")))
	}

	parts = append(parts, ResolveProgramStudi(r["program_studi"])...)
	parts = append(parts, ResolveLevels(r["jenjang"])...)

	return strings.ToLower(strings.Join(parts, "\n"))
}

// DescriptionText gathers the fields consulted by the description filter:
// the position description and title, the company description, and any
// special requirements. Lowercased for substring matching.
func DescriptionText(r Record) string {
	parts := make([]string, 0, 4)
	push := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	push(r.String("deskripsi_posisi"))
	push(r.String("posisi"))
	if cp := r.Map("perusahaan"); cp != nil {
		push(cp.String("deskripsi_perusahaan"))
	}
	push(r.String("syarat_khusus"))

	return strings.ToLower(strings.Join(parts, "\n"))
}

func asString(v any) string {
	if s, ok := stringify(v); ok {
		return s
	}
	return fmt.Sprint(v)
}
