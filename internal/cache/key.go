package cache

import (
	"encoding/json"
	"fmt"
)

// Key derives the cache key for a query as entity:operation:<canonical params>.
// Params are normalized through a JSON round trip so object key order does
// not matter: equal logical params always yield identical keys.
//
// Non-serializable params are a programming error and panic rather than
// silently caching under a wrong key.
func Key(entity, operation string, params any) string {
	return entity + ":" + operation + ":" + canonicalJSON(entity, operation, params)
}

func canonicalJSON(entity, operation string, params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		panic(fmt.Sprintf("cache: non-serializable params for %s.%s: %v", entity, operation, err))
	}

	// Re-marshal via interface{} so struct params and map params with the
	// same logical content produce the same byte sequence (encoding/json
	// emits map keys in sorted order).
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		panic(fmt.Sprintf("cache: cannot normalize params for %s.%s: %v", entity, operation, err))
	}

	canonical, err := json.Marshal(normalized)
	if err != nil {
		panic(fmt.Sprintf("cache: cannot canonicalize params for %s.%s: %v", entity, operation, err))
	}
	return string(canonical)
}
