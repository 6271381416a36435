package engine

import "github.com/juanmilkah/volatix/internal/value"

// SetList stores elems as a single List-typed value at key (spec.md
// §4.3 "SETLIST key elem1 elem2 ..."). To bulk-fetch or bulk-delete
// several independent keys at once, use GetList/DeleteList instead.
func (e *Engine) SetList(key string, elems []value.Value) error {
	return e.Set(key, value.List(elems))
}

// SetMap stores fields as a single Map-typed value at key (spec.md §4.3
// "SETMAP key field1 val1 field2 val2 ..."). Duplicate field names keep
// the last occurrence.
func (e *Engine) SetMap(key string, fields map[string]value.Value) error {
	return e.Set(key, value.Map(fields))
}

// GetList reads several independent keys at once, returning a value (or
// error) per key in the same order as keys.
func (e *Engine) GetList(keys []string) ([]value.Value, []error) {
	values := make([]value.Value, len(keys))
	errs := make([]error, len(keys))
	for i, k := range keys {
		values[i], errs[i] = e.Get(k)
	}
	return values, errs
}

// DeleteList deletes several independent keys at once, returning the
// number of keys that actually existed and were removed (spec.md §4.3
// "DELETELIST key1 key2 ... -> count"); missing keys are skipped
// without error.
func (e *Engine) DeleteList(keys []string) int {
	count := 0
	for _, k := range keys {
		if e.Delete(k) == nil {
			count++
		}
	}
	return count
}
