// Package facility defines the daycare facility record served by the search pipeline.
package facility

import (
	"strings"
	"time"

	"github.com/carefinder/carefinder/internal/domain"
)

// AgeCounts holds a per-age-band count (classes or enrolled children).
type AgeCounts struct {
	Age0         int `json:"age_0"`
	Age1         int `json:"age_1"`
	Age2         int `json:"age_2"`
	Age3         int `json:"age_3"`
	Age4         int `json:"age_4"`
	Age5         int `json:"age_5"`
	MixedInfant  int `json:"mixed_infant"`
	MixedToddler int `json:"mixed_toddler"`
	Special      int `json:"special"`
	Total        int `json:"total"`
}

// Band returns the count for a single-age band. Out-of-range bands return 0.
func (c AgeCounts) Band(b AgeBand) int {
	switch b {
	case Age0:
		return c.Age0
	case Age1:
		return c.Age1
	case Age2:
		return c.Age2
	case Age3:
		return c.Age3
	case Age4:
		return c.Age4
	case Age5:
		return c.Age5
	}
	return 0
}

// Facility is one registry record keyed by its stable centre code.
type Facility struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TypeName        string    `json:"type"`
	StatusName      string    `json:"status"`
	Address         string    `json:"address"`
	District        string    `json:"district"`
	ZipCode         string    `json:"zip_code,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Fax             string    `json:"fax,omitempty"`
	Homepage        string    `json:"homepage,omitempty"`
	Capacity        int       `json:"capacity"`
	CurrentChildren int       `json:"current_children"`
	ApprovedAt      string    `json:"approved_at,omitempty"`
	AbolishedAt     string    `json:"abolished_at,omitempty"`
	PauseBeginAt    string    `json:"pause_begin_at,omitempty"`
	PauseEndAt      string    `json:"pause_end_at,omitempty"`
	SpecialServices string    `json:"special_services,omitempty"`
	Vehicle         *string   `json:"vehicle,omitempty"`
	RoomCount       int       `json:"room_count"`
	RoomArea        float64   `json:"room_area"`
	PlaygroundCount int       `json:"playground_count"`
	CCTVCount       int       `json:"cctv_count"`
	StaffCount      int       `json:"staff_count"`
	Classes         AgeCounts `json:"classes"`
	Children        AgeCounts `json:"children"`
	DataDate        string    `json:"data_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EmbeddingText is the text whose vector represents the facility: name, address,
// type and special services joined by single spaces. Empty parts are skipped, so
// a facility with no text yields "".
func (f *Facility) EmbeddingText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{f.Name, f.Address, f.TypeName, f.SpecialServices} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsActive reports whether the facility is currently operating.
func (f *Facility) IsActive() bool { return f.StatusName == domain.ActiveStatus }

// HasPlayground reports whether at least one playground is registered.
func (f *Facility) HasPlayground() bool { return f.PlaygroundCount > 0 }

// HasVehicle reports whether a transport vehicle entry is present.
func (f *Facility) HasVehicle() bool { return f.Vehicle != nil }

// Summary is the compact, machine-readable view attached to pipeline metadata.
type Summary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TypeName        string `json:"type"`
	District        string `json:"district"`
	Capacity        int    `json:"capacity"`
	CurrentChildren int    `json:"current_children"`
	Phone           string `json:"phone"`
}

// Summarize returns the identifying and contact fields of f.
func (f *Facility) Summarize() Summary {
	return Summary{
		ID:              f.ID,
		Name:            f.Name,
		TypeName:        f.TypeName,
		District:        f.District,
		Capacity:        f.Capacity,
		CurrentChildren: f.CurrentChildren,
		Phone:           f.Phone,
	}
}

// Count is a (name, count) pair used by the district and type breakdowns.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats aggregates the active registry.
type Stats struct {
	Total      int     `json:"total"`
	ByDistrict []Count `json:"by_district"`
	ByType     []Count `json:"by_type"`
}
