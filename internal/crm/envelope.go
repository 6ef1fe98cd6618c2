package crm

// The CRM has no stable response schema: list payloads arrive as a bare
// array, or nested under one of several field names, sometimes wrapped one
// level inside "Data". Extraction is an ordered list of strategies so schema
// drift stays confined to this file.

var envelopeKeys = []string{"Results", "Items", "Transactions", "Notes", "Interactions", "Value"}

// ExtractItems flattens a decoded list payload into its records. It reports
// false when none of the known shapes match, which callers treat as a
// permanent (malformed-body) failure.
func ExtractItems(data any) ([]map[string]any, bool) {
	if items, ok := extractShallow(data); ok {
		return items, true
	}
	if m, ok := data.(map[string]any); ok {
		if inner, ok := m["Data"]; ok {
			// One level of wrapping only; deeper nesting fails loud.
			return extractShallow(inner)
		}
	}
	return nil, false
}

func extractShallow(data any) ([]map[string]any, bool) {
	switch v := data.(type) {
	case []any:
		return asRecords(v), true
	case map[string]any:
		for _, key := range envelopeKeys {
			if arr, ok := v[key].([]any); ok {
				return asRecords(arr), true
			}
		}
	}
	return nil, false
}

func asRecords(arr []any) []map[string]any {
	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
