package domain

// HasChanged reports whether candidate differs from previous. The comparison is structural:
// same length, same order and identical field values. Reordered but otherwise identical tables
// count as changed. A nil previous means the prior period is unknown and always counts as changed.
func HasChanged(previous, candidate []NormalizedRecord) bool {
	if previous == nil {
		return true
	}
	if len(previous) != len(candidate) {
		return true
	}
	for i := range previous {
		if previous[i] != candidate[i] {
			return true
		}
	}
	return false
}
