package request

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/carefinder/carefinder/internal/domain/facility"
)

// Recognised filter keys.
const (
	KeyDistrict       = "district"
	KeyType           = "type"
	KeyAge            = "age"
	KeyHasPlayground  = "has_playground"
	KeyMinCCTV        = "min_cctv"
	KeyHasVehicle     = "has_vehicle"
	KeySpecialService = "special_service"
)

// Age vocabulary words that expand to several bands.
const (
	AgeInfant  = "영아"
	AgeToddler = "유아"
)

// Filters are the structured constraints of a query.
// Values are parsed leniently; anything unparsable is treated as unset.
// Unknown keys survive in Raw but never constrain retrieval.
type Filters struct {
	District       string
	Type           string
	Age            string
	HasPlayground  bool
	MinCCTV        *int
	HasVehicle     bool
	SpecialService string

	raw map[string]any
}

// ParseFilters builds Filters from a free-form map. It never fails.
func ParseFilters(m map[string]any) Filters {
	f := Filters{raw: make(map[string]any, len(m))}
	maps.Copy(f.raw, m)

	f.District = stringValue(m[KeyDistrict])
	f.Type = stringValue(m[KeyType])
	f.Age = stringValue(m[KeyAge])
	f.SpecialService = stringValue(m[KeySpecialService])
	f.HasPlayground = boolValue(m[KeyHasPlayground])
	f.HasVehicle = boolValue(m[KeyHasVehicle])
	if n, ok := intValue(m[KeyMinCCTV]); ok && n >= 0 {
		f.MinCCTV = &n
	}
	return f
}

// Merge returns the filters of base overridden key by key with over.
func Merge(base, over Filters) Filters {
	merged := make(map[string]any, len(base.raw)+len(over.raw))
	maps.Copy(merged, base.raw)
	maps.Copy(merged, over.raw)
	return ParseFilters(merged)
}

// Raw returns a copy of the original key/value map.
func (f Filters) Raw() map[string]any {
	out := make(map[string]any, len(f.raw))
	maps.Copy(out, f.raw)
	return out
}

// Has reports whether the key was present in the original map.
func (f Filters) Has(key string) bool {
	_, ok := f.raw[key]
	return ok
}

// Len returns the number of keys in the original map.
func (f Filters) Len() int { return len(f.raw) }

// AgeBands resolves the age value to class bands.
// 만N세 selects band N, 영아 selects 0-2, 유아 selects 3-5. No match yields nil.
func (f Filters) AgeBands() []facility.AgeBand {
	if f.Age == "" {
		return nil
	}
	infant := strings.Contains(f.Age, AgeInfant)
	toddler := strings.Contains(f.Age, AgeToddler)

	var bands []facility.AgeBand
	for b := facility.Age0; b <= facility.Age5; b++ {
		switch {
		case strings.Contains(f.Age, b.Token()),
			infant && b <= facility.Age2,
			toddler && b >= facility.Age3:
			bands = append(bands, b)
		}
	}
	return bands
}

// MarshalJSON encodes the original map.
func (f Filters) MarshalJSON() ([]byte, error) {
	if f.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.raw)
}

// UnmarshalJSON decodes a JSON object and parses it leniently.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode filters: %w", err)
	}
	*f = ParseFilters(m)
	return nil
}

// stringValue accepts scalars only. Objects, arrays and nil are unset.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
		return false
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		n, err := t.Float64()
		return err == nil && n != 0
	}
	return false
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := strconv.Atoi(t.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
