package pipeline

// Intent is the coarse category of a user query.
type Intent string

// Known intents. Other values returned by the extractor are kept verbatim.
const (
	IntentFindNearby     Intent = "find_nearby"
	IntentFilterType     Intent = "filter_type"
	IntentFilterAge      Intent = "filter_age"
	IntentFilterFacility Intent = "filter_facility"
	IntentCompare        Intent = "compare"
	IntentGeneralInfo    Intent = "general_info"
	IntentUnknown        Intent = "unknown"
)

// IsKnown reports whether the intent belongs to the documented vocabulary.
func (i Intent) IsKnown() bool {
	switch i {
	case IntentFindNearby, IntentFilterType, IntentFilterAge,
		IntentFilterFacility, IntentCompare, IntentGeneralInfo, IntentUnknown:
		return true
	}
	return false
}
