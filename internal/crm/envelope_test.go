package crm

import (
	"encoding/json"
	"testing"
)

func decodeAny(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestExtractItemsKnownShapes(t *testing.T) {
	shapes := []string{
		`[{"Id":1},{"Id":2}]`,
		`{"Results":[{"Id":1},{"Id":2}]}`,
		`{"Items":[{"Id":1},{"Id":2}]}`,
		`{"Transactions":[{"Id":1},{"Id":2}]}`,
		`{"Data":{"Results":[{"Id":1},{"Id":2}]}}`,
		`{"Data":[{"Id":1},{"Id":2}]}`,
	}
	for _, raw := range shapes {
		items, ok := ExtractItems(decodeAny(t, raw))
		if !ok {
			t.Fatalf("shape not recognized: %s", raw)
		}
		if len(items) != 2 {
			t.Fatalf("shape %s yielded %d items, want 2", raw, len(items))
		}
	}
}

func TestExtractItemsRejectsUnknownShape(t *testing.T) {
	for _, raw := range []string{
		`{"Records":[{"Id":1}]}`,
		`{"Data":{"Data":{"Results":[]}}}`,
		`"just a string"`,
		`42`,
	} {
		if _, ok := ExtractItems(decodeAny(t, raw)); ok {
			t.Fatalf("shape should be rejected: %s", raw)
		}
	}
}

func TestExtractItemsSkipsNonObjectEntries(t *testing.T) {
	items, ok := ExtractItems(decodeAny(t, `{"Results":[{"Id":1},"stray",null,{"Id":2}]}`))
	if !ok {
		t.Fatalf("shape not recognized")
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (non-objects skipped)", len(items))
	}
}
