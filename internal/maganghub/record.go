package maganghub

import (
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Record is a single vacancy as stored in a page snapshot. The upstream API
// is loosely typed: numbers may arrive as strings, nested objects may be
// missing or null. The record therefore stays a raw map and all access goes
// through the helpers below, which never panic on unexpected shapes.
type Record map[string]any

// Company holds the recognized fields of the nested perusahaan object.
type Company struct {
	NamaKabupaten       string `mapstructure:"nama_kabupaten"`
	NamaProvinsi        string `mapstructure:"nama_provinsi"`
	NamaPerusahaan      string `mapstructure:"nama_perusahaan"`
	Alamat              string `mapstructure:"alamat"`
	DeskripsiPerusahaan string `mapstructure:"deskripsi_perusahaan"`
	IDPerusahaan        string `mapstructure:"id_perusahaan"`
}

// String returns the value under key rendered as a string, or "" when the
// key is absent, null, or not a scalar.
func (r Record) String(key string) string {
	s, _ := stringify(r[key])
	return s
}

// Map returns the nested object under key, or nil.
func (r Record) Map(key string) Record {
	if m, ok := r[key].(map[string]any); ok {
		return Record(m)
	}
	return nil
}

// Company decodes the perusahaan object. Decoding is weakly typed; a missing
// or malformed object yields the zero value.
func (r Record) Company() Company {
	var c Company
	raw := r.Map("perusahaan")
	if raw == nil {
		return c
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c
	}
	_ = dec.Decode(map[string]any(raw))

	return c
}

// Int parses the value under key as an integer. Unparseable values are
// treated as absent, not as zero.
func (r Record) Int(key string) *int {
	switch v := r[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// GovernmentPresent reports whether the record carries a government agency
// or sub-agency with a non-empty name.
func (r Record) GovernmentPresent() bool {
	for _, name := range r.GovernmentNames() {
		if strings.TrimSpace(name) != "" {
			return true
		}
	}
	return false
}

// GovernmentNames returns the agency and sub-agency names found on the
// record, in that order, skipping absent ones.
func (r Record) GovernmentNames() []string {
	var names []string
	if m := r.Map("government_agency"); m != nil {
		if s := m.String("government_agency_name"); s != "" {
			names = append(names, s)
		}
	}
	if m := r.Map("sub_government_agency"); m != nil {
		if s := m.String("sub_government_agency_name"); s != "" {
			names = append(names, s)
		}
	}
	return names
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
