package utils

// SelectColumns returns only the selected keys of data. Data is returned
// unchanged when nothing is selected.
func SelectColumns(data map[string]any, selected map[string]struct{}) map[string]any {
	if len(selected) == 0 {
		return data
	}

	filtered := make(map[string]any, len(selected))
	for key, value := range data {
		if _, exists := selected[key]; exists {
			filtered[key] = value
		}
	}
	return filtered
}
