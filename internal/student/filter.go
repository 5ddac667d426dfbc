package student

import "strings"

// Filter returns the records whose key field contains query, ignoring case.
// An empty query returns every record.
func Filter(records []Record, key Field, query string) []Record {
	out := make([]Record, 0, len(records))
	if query == "" {
		return append(out, records...)
	}
	needle := strings.ToLower(query)
	for i := range records {
		if strings.Contains(strings.ToLower(records[i].Get(key)), needle) {
			out = append(out, records[i])
		}
	}
	return out
}
