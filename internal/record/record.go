// Package record defines the normalized plugin record.
package record

// Record is the normalized representation of one plugin's metadata.
//
// URL is the canonical identity; together with Owner it forms the storage
// key. Owner and Category are operator-controlled and survive re-resolution:
// refreshing a record merges instead of replacing (see Merge).
type Record struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Icon        string   `json:"icon"`
	Versions    []string `json:"versions"`
	Loaders     []string `json:"loaders"`
	Owner       string   `json:"owner,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// Merge combines a freshly resolved record with a previously stored one.
// Fresh metadata always wins; Owner and Category are preserved from prev
// when the fresh record leaves them unset.
func Merge(prev, fresh Record) Record {
	merged := fresh

	if merged.URL == "" {
		merged.URL = prev.URL
	}

	if merged.Owner == "" {
		merged.Owner = prev.Owner
	}

	if merged.Category == "" {
		merged.Category = prev.Category
	}

	return merged
}
