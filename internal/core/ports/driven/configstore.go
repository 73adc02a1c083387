package driven

// ConfigStore is a flat key/value view over persisted settings. Keys use dot
// notation ("llm.provider", "runtime.workers").
//
// Typed getters return the zero value when the key is missing or holds a
// different type; use Get to tell the two apart.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value and persists the store.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path returns the backing file.
	Path() string
}
