package domain

// KeyPrefix namespaces every key this service writes to a shared key-value store.
const KeyPrefix = "carefinder:"

// ActiveStatus is the status name of a facility that is currently operating.
const ActiveStatus = "정상"

// VectorConfig holds the default vectorization settings.
type VectorConfig struct {
	Model      string
	Dimensions int
	BatchSize  int
}

// DefaultVectorConfig returns the defaults for text-embedding-3-large.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "text-embedding-3-large",
		Dimensions: 3072,
		BatchSize:  100,
	}
}
