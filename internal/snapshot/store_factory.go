package snapshot

import "strings"

// NewStore selects a backend for the configured snapshot location: a
// gs:// URI gets the GCS store, anything else is treated as a local file
// path.
func NewStore(location string) (Store, error) {
	if strings.HasPrefix(location, "gs://") {
		return NewGCSStore(location)
	}
	return NewFileStore(location), nil
}
