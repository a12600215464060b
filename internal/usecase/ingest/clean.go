package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Placeholder coordinates the registry uses when a centre has no geocode
// (Seoul City Hall). They are treated as missing.
const (
	placeholderLatitude  = 37.566470
	placeholderLongitude = 126.977963
)

// Record is one raw registry row. Values are JSON strings or numbers.
type Record map[string]any

func (r Record) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (r Record) optStr(key string) *string {
	s := r.str(key)
	if s == "" {
		return nil
	}
	return &s
}

// int parses whole numbers. Anything else, including empty values, is 0.
func (r Record) int(key string) int {
	s := r.str(key)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	return int(f)
}

func (r Record) float(key string) float64 {
	s := r.str(key)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coord parses a coordinate, dropping zero and placeholder values.
func (r Record) coord(key string) *float64 {
	f := r.float(key)
	if f == 0 || f == placeholderLatitude || f == placeholderLongitude {
		return nil
	}
	return &f
}
