package postgres

import "strings"

// ResolveSchemas normalizes and expands schema filter values.
// Empty input means "all non-system schemas" (no filtering).
// "all" or "*" means the same. Otherwise returns the provided schemas.
func ResolveSchemas(schemas []string) []string {
	if len(schemas) == 0 {
		return nil
	}
	for _, s := range schemas {
		lower := strings.ToLower(strings.TrimSpace(s))
		if lower == "all" || lower == "*" {
			return nil
		}
	}
	result := make([]string, 0, len(schemas))
	for _, s := range schemas {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// FilterRoutines keeps routines whose schema is in schemas (case-insensitive).
// A nil or empty schemas list keeps everything.
func FilterRoutines(routines []RoutineInfo, schemas []string) []RoutineInfo {
	if len(schemas) == 0 {
		return routines
	}

	include := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		include[strings.ToLower(s)] = true
	}

	var filtered []RoutineInfo
	for _, r := range routines {
		if include[strings.ToLower(r.Schema)] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
