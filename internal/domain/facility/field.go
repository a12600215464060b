package facility

import "fmt"

// Logical field names understood by the relational store.
const (
	FieldID              = "id"
	FieldStatus          = "status"
	FieldDistrict        = "district"
	FieldType            = "type"
	FieldPlaygroundCount = "playground_count"
	FieldCCTVCount       = "cctv_count"
	FieldVehicle         = "vehicle"
	FieldSpecialServices = "special_services"
)

// AgeBand is a single-age class band, 만0세 through 만5세.
type AgeBand int

// Age bands.
const (
	Age0 AgeBand = iota
	Age1
	Age2
	Age3
	Age4
	Age5
)

// InfantBands are the bands covered by 영아 (ages 0-2).
var InfantBands = []AgeBand{Age0, Age1, Age2}

// ToddlerBands are the bands covered by 유아 (ages 3-5).
var ToddlerBands = []AgeBand{Age3, Age4, Age5}

// ClassField returns the logical field holding the class count for the band.
func (b AgeBand) ClassField() string {
	return fmt.Sprintf("class_count_%d", int(b))
}

// Token returns the Korean age token for the band, e.g. "만3세".
func (b AgeBand) Token() string {
	return fmt.Sprintf("만%d세", int(b))
}
