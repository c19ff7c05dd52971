package releases

import "time"

// Release is a single entry from the recent-uploads feed. Date is parsed from
// the record's date field; Fields carries every raw feed field unmodified,
// date included, so subscribers see exactly what the feed sent.
type Release struct {
	Date   time.Time
	Fields map[string]any
}

// Field returns a raw feed field by name.
func (r Release) Field(key string) (any, bool) {
	val, ok := r.Fields[key]
	return val, ok
}

// StringField returns a raw feed field as a string, or "" when absent or not
// a string.
func (r Release) StringField(key string) string {
	if val, ok := r.Fields[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// Event is one notification delivered to a subscriber: the configured event
// name plus the release that triggered it.
type Event struct {
	Name    string
	Release Release
}
